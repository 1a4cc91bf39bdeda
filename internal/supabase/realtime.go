package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lib/pq"
	"site-crm-backend/internal/models"
)

// ChangeFeedChannel is the Postgres NOTIFY channel written by the
// projects trigger.
const ChangeFeedChannel = "project_changes"

// RealtimeClient fans the Postgres change feed out to named subscriptions.
// Delivery order and uniqueness are not guaranteed; consumers dedupe.
type RealtimeClient struct {
	listener *pq.Listener

	mu   sync.RWMutex
	subs map[string]*Subscription
}

type Subscription struct {
	client   *RealtimeClient
	channel  string
	table    string
	callback func(models.ChangeEvent)
}

func NewRealtimeClient(dbURL string) *RealtimeClient {
	listener := pq.NewListener(dbURL, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("[Realtime] listener event %d: %v", ev, err)
		}
	})
	return newRealtimeClient(listener)
}

func newRealtimeClient(listener *pq.Listener) *RealtimeClient {
	return &RealtimeClient{
		listener: listener,
		subs:     make(map[string]*Subscription),
	}
}

// Start begins listening and dispatching until ctx is cancelled.
func (r *RealtimeClient) Start(ctx context.Context) error {
	if err := r.listener.Listen(ChangeFeedChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ChangeFeedChannel, err)
	}
	log.Printf("[Realtime] Listening on %s", ChangeFeedChannel)
	go r.run(ctx)
	return nil
}

func (r *RealtimeClient) run(ctx context.Context) {
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			r.listener.Close()
			log.Println("[Realtime] Listener closed")
			return

		case n := <-r.listener.Notify:
			if n == nil {
				// Reconnected; anything sent while down is lost.
				log.Println("[Realtime] Connection re-established")
				continue
			}
			if err := r.dispatch([]byte(n.Extra)); err != nil {
				log.Printf("[Realtime] Dropping event: %v", err)
			}

		case <-ping.C:
			go func() {
				if err := r.listener.Ping(); err != nil {
					log.Printf("[Realtime] Ping failed: %v", err)
				}
			}()
		}
	}
}

// Subscribe registers callback for changes on table under a logical
// channel name. An existing subscription with the same name is removed
// first so a re-subscribe never doubles delivery. Use table "*" for all.
func (r *RealtimeClient) Subscribe(channel, table string, callback func(models.ChangeEvent)) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[channel]; ok {
		log.Printf("[Realtime] Replacing subscription %s", channel)
	}

	sub := &Subscription{
		client:   r,
		channel:  channel,
		table:    table,
		callback: callback,
	}
	r.subs[channel] = sub
	return sub
}

// Unsubscribe is idempotent and leaves a newer subscription with the same
// channel name in place.
func (s *Subscription) Unsubscribe() {
	s.client.mu.Lock()
	defer s.client.mu.Unlock()

	if current, ok := s.client.subs[s.channel]; ok && current == s {
		delete(s.client.subs, s.channel)
	}
}

func (s *Subscription) Channel() string {
	return s.channel
}

func (r *RealtimeClient) dispatch(payload []byte) error {
	var event models.ChangeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode change event: %w", err)
	}

	r.mu.RLock()
	targets := make([]*Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		if sub.table == "*" || sub.table == event.Table {
			targets = append(targets, sub)
		}
	}
	r.mu.RUnlock()

	for _, sub := range targets {
		sub.callback(event)
	}
	return nil
}
