// Package notifications turns project status changes from the change feed
// into deduplicated dashboard notifications.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"site-crm-backend/internal/localstate"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/socket"
	"site-crm-backend/internal/status"
)

const (
	KeyNotifications = "notifications"
	KeyDismissed     = "dismissedNotifications"

	DefaultDedupWindow = time.Minute

	dateLayout = "02/01/2006 15:04"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("site-crm/notifications"))

// Broadcaster pushes messages to connected dashboards.
type Broadcaster interface {
	Broadcast(msgType socket.MessageType, payload interface{})
}

type Engine struct {
	store  localstate.Store
	push   Broadcaster
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	active    []models.Notification
	dismissed []string
	isGone    map[string]bool
}

func NewEngine(store localstate.Store, push Broadcaster, window time.Duration) *Engine {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Engine{
		store:  store,
		push:   push,
		window: window,
		now:    time.Now,
		active: []models.Notification{},
		isGone: map[string]bool{},
	}
}

func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ID derives a notification id from the transition and the dedup bucket
// that at falls into.
func ID(projectID, oldStatus, newStatus string, at time.Time, window time.Duration) string {
	bucket := at.UnixNano() / int64(window)
	key := fmt.Sprintf("%s|%s|%s|%d", projectID, oldStatus, newStatus, bucket)
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// Load reads both lists from the store. Missing keys mean empty lists.
func (e *Engine) Load(ctx context.Context) error {
	var active []models.Notification
	if err := e.store.Load(ctx, KeyNotifications, &active); err != nil && !errors.Is(err, localstate.ErrNotFound) {
		return fmt.Errorf("failed to load notifications: %w", err)
	}
	var dismissed []string
	if err := e.store.Load(ctx, KeyDismissed, &dismissed); err != nil && !errors.Is(err, localstate.ErrNotFound) {
		return fmt.Errorf("failed to load dismissed notifications: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.dismissed = dismissed
	e.isGone = make(map[string]bool, len(dismissed))
	for _, id := range dismissed {
		e.isGone[id] = true
	}
	e.active = make([]models.Notification, 0, len(active))
	for _, n := range active {
		if !e.isGone[n.ID] {
			e.active = append(e.active, n)
		}
	}
	log.Printf("[Notifications] Loaded %d active, %d dismissed", len(e.active), len(e.dismissed))
	return nil
}

// HandleChange reacts to project UPDATE events that change the status.
func (e *Engine) HandleChange(event models.ChangeEvent) {
	if event.EventType != models.ChangeUpdate {
		return
	}
	before, after, err := event.ProjectRows()
	if err != nil {
		log.Printf("[Notifications] Ignoring undecodable event: %v", err)
		return
	}
	if before == nil || after == nil || before.Status == after.Status {
		return
	}
	if _, _, err := e.Add(context.Background(), *after, before.Status); err != nil {
		log.Printf("[Notifications] Failed to record transition of %s: %v", after.ID, err)
	}
}

// Add records the transition of p from oldStatus. It reports false when
// the notification already exists or was dismissed.
func (e *Engine) Add(ctx context.Context, p models.Project, oldStatus string) (models.Notification, bool, error) {
	at := e.now()
	n := models.Notification{
		ID:          ID(p.ID, oldStatus, p.Status, at, e.window),
		Title:       "Project status updated",
		Description: fmt.Sprintf("%s moved from %s to %s", p.ClientName, oldStatus, p.Status),
		Date:        at.Format(dateLayout),
		Type:        models.NotificationInfo,
	}
	if p.Status == status.SiteReady {
		n.Type = models.NotificationSuccess
	}

	e.mu.Lock()
	if e.isGone[n.ID] || e.indexOf(n.ID) >= 0 {
		e.mu.Unlock()
		return n, false, nil
	}
	e.active = append([]models.Notification{n}, e.active...)
	err := e.flush(ctx)
	e.mu.Unlock()

	if e.push != nil {
		e.push.Broadcast(socket.MessageNotification, n)
	}
	return n, true, err
}

// List returns the active notifications, newest first.
func (e *Engine) List() []models.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Notification, len(e.active))
	copy(out, e.active)
	return out
}

func (e *Engine) UnreadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, item := range e.active {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkAsRead flips the read flag and keeps the item in place.
func (e *Engine) MarkAsRead(ctx context.Context, id string) error {
	e.mu.Lock()
	i := e.indexOf(id)
	if i < 0 {
		e.mu.Unlock()
		return models.ErrNotFound
	}
	e.active[i].Read = true
	err := e.flush(ctx)
	e.mu.Unlock()

	e.replaced()
	return err
}

// Dismiss removes the item for good. The same id is never shown again.
func (e *Engine) Dismiss(ctx context.Context, id string) error {
	e.mu.Lock()
	i := e.indexOf(id)
	if i < 0 {
		e.mu.Unlock()
		return models.ErrNotFound
	}
	e.active = append(e.active[:i], e.active[i+1:]...)
	e.markGone(id)
	err := e.flush(ctx)
	e.mu.Unlock()

	e.replaced()
	return err
}

// ClearAll dismisses every active notification.
func (e *Engine) ClearAll(ctx context.Context) error {
	e.mu.Lock()
	for _, n := range e.active {
		e.markGone(n.ID)
	}
	e.active = []models.Notification{}
	err := e.flush(ctx)
	e.mu.Unlock()

	e.replaced()
	return err
}

func (e *Engine) markGone(id string) {
	if !e.isGone[id] {
		e.isGone[id] = true
		e.dismissed = append(e.dismissed, id)
	}
}

func (e *Engine) indexOf(id string) int {
	for i, n := range e.active {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// flush writes both lists. Callers hold e.mu.
func (e *Engine) flush(ctx context.Context) error {
	if err := e.store.Save(ctx, KeyNotifications, e.active); err != nil {
		return fmt.Errorf("failed to persist notifications: %w", err)
	}
	dismissed := e.dismissed
	if dismissed == nil {
		dismissed = []string{}
	}
	if err := e.store.Save(ctx, KeyDismissed, dismissed); err != nil {
		return fmt.Errorf("failed to persist dismissed notifications: %w", err)
	}
	return nil
}

func (e *Engine) replaced() {
	if e.push != nil {
		e.push.Broadcast(socket.MessageNotificationsReplaced, e.List())
	}
}
