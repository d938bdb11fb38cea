package controllers

import (
	"log"
	"net/http"
	"time"

	"wifiprober/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware already filtered the origin
		return true
	},
}

// HandleWebSocket streams one live snapshot per tick to the client.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &services.ClientConnection{
		ID:    c.ClientIP() + "-" + uuid.NewString()[:8],
		Conn:  ws,
		Send:  make(chan services.WebSocketMessage, 16),
		Close: make(chan struct{}),
	}

	// current state first, so the client does not wait a full tick
	client.Send <- services.WebSocketMessage{
		Type:      "live",
		Timestamp: time.Now(),
		Data:      h.Live.Snapshot(),
	}

	if !h.Hub.Register(client) {
		ws.Close()
		return
	}

	go readPump(client, h.Hub)
	go writePump(client)
}

// readPump reads messages from the WebSocket client
func readPump(client *services.ClientConnection, hub *services.WebSocketHub) {
	defer func() {
		close(client.Close)
		hub.Unregister(client.ID)
	}()

	for {
		var msg services.WebSocketMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] WebSocket error: %v", err)
			}
			return
		}

		switch msg.Type {
		case "ping":
			select {
			case client.Send <- services.WebSocketMessage{Type: "pong", Timestamp: time.Now()}:
			default:
			}
		case "unsubscribe":
			return
		default:
			log.Printf("[WS] Unknown message type: %s", msg.Type)
		}
	}
}

// writePump writes messages to the WebSocket client
func writePump(client *services.ClientConnection) {
	defer client.Conn.Close()

	for {
		select {
		case msg, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[WS] Write error: %v", err)
				}
				return
			}

		case <-client.Close:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
