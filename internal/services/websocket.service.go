package services

import (
	"context"
	"log"
	"sync"
	"time"

	"wifiprober/internal/models"

	"github.com/gorilla/websocket"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string    `json:"type"` // "live", "pong", "error"
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ClientConnection represents a connected WebSocket client
type ClientConnection struct {
	ID    string
	Conn  *websocket.Conn
	Send  chan WebSocketMessage
	Close chan struct{}
}

// WebSocketHub fans live snapshots out to connected clients.
type WebSocketHub struct {
	clients    map[string]*ClientConnection
	broadcast  chan WebSocketMessage
	register   chan *ClientConnection
	unregister chan string
	mu         sync.RWMutex
	done       chan struct{}
	now        func() time.Time
}

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Run manages the hub's event loop until ctx is cancelled.
func (h *WebSocketHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			// closing the conn ends both pumps; readPump owns the unregister
			for id, client := range h.clients {
				delete(h.clients, id)
				client.Conn.Close()
			}
			h.mu.Unlock()
			log.Println("[WS] Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client connected: %s (total: %d)", client.ID, total)

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client disconnected: %s (total: %d)", clientID, total)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// slow client, drop
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a new client to the hub. It returns false once the hub has
// stopped.
func (h *WebSocketHub) Register(client *ClientConnection) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

// PublishSnapshot queues a live snapshot for every client. It never blocks
// the caller.
func (h *WebSocketHub) PublishSnapshot(snap models.LiveSnapshot) {
	msg := WebSocketMessage{
		Type:      "live",
		Timestamp: h.now(),
		Data:      snap,
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
