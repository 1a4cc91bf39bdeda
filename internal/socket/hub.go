// Package socket pushes dashboard events to connected browsers.
package socket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type MessageType string

const (
	MessageNotification          MessageType = "notification"
	MessageNotificationsReplaced MessageType = "notifications_replaced"
	MessagePing                  MessageType = "ping"
)

type Message struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client is one dashboard connection.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan []byte
}

// Hub keeps the set of clients and fans messages out to all of them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run is the hub loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	log.Println("[Hub] WebSocket hub started")

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			log.Println("[Hub] WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[Hub] Client registered: user=%s, id=%s, total_clients=%d", client.UserID, client.ID, total)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.sendAll(message)

		case <-ping.C:
			if data, err := encode(MessagePing, nil); err == nil {
				h.sendAll(data)
			}
		}
	}
}

// Register and Unregister return immediately once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		log.Printf("[Hub] Client disconnected: user=%s, id=%s, total_clients=%d", client.UserID, client.ID, len(h.clients))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.Send)
	}
}

// sendAll drops clients whose buffer is full.
func (h *Hub) sendAll(message []byte) {
	h.mu.RLock()
	var slow []*Client
	for client := range h.clients {
		select {
		case client.Send <- message:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.remove(client)
	}
}

// Broadcast queues a message for every connected client.
func (h *Hub) Broadcast(msgType MessageType, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		log.Printf("[Hub] Error marshaling message: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Printf("[Hub] Broadcast queue full, dropping %s", msgType)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func encode(msgType MessageType, payload interface{}) ([]byte, error) {
	return json.Marshal(Message{Type: msgType, Payload: payload, Timestamp: time.Now()})
}
