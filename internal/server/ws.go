// ABOUTME: WebSocket task stream for import state transitions.
// ABOUTME: Broadcast-only hub: clients subscribe, the importer publishes.

package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fieldkit/sheetbridge/internal/importer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Allow requests with no origin (like direct WebSocket clients)
		}
		allowedOrigins := []string{"localhost", "127.0.0.1", "::1"}
		for _, allowed := range allowedOrigins {
			if strings.Contains(origin, allowed) {
				return true
			}
		}
		return false
	},
}

// wsClient is one connected subscriber.
type wsClient struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once // ensures send channel is closed only once
	closeConn sync.Once // ensures conn.Close() is called only once
}

// Hub fans import task events out to all connected clients. It implements
// importer.Notifier so it can be wired directly into the pipeline.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

// Notify serializes the event and broadcasts it. A client with a full
// send buffer gets the message dropped rather than stalling the pipeline.
func (h *Hub) Notify(ev importer.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to marshal task event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("Client send buffer full, dropping task event")
		}
	}
}

// HandleWS upgrades the connection and manages the client lifecycle.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go client.writePump()
	go h.readPump(client)
}

// readPump discards inbound frames; the stream is one-way. It exists to
// process control frames and to notice the client going away.
func (h *Hub) readPump(client *wsClient) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()

		client.closeOnce.Do(func() {
			close(client.send)
		})
		client.closeConn.Do(func() {
			client.conn.Close()
		})
	}()

	client.conn.SetReadLimit(maxMessageSize)
	if err := client.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set read deadline: %v", err)
		return
	}
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings.
func (client *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.closeConn.Do(func() {
			client.conn.Close()
		})
	}()

	for {
		select {
		case message, ok := <-client.send:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline: %v", err)
				return
			}
			if !ok {
				if err := client.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					log.Printf("Failed to write close message: %v", err)
				}
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set ping write deadline: %v", err)
				return
			}
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Failed to write ping: %v", err)
				return
			}
		}
	}
}
