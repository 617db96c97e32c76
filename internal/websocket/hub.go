package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"fieldwatch-backend/internal/metrics"
	"fieldwatch-backend/internal/snapshot"
)

// Hub maintains active dashboard connections and fans refresh summaries out
// to all of them.
type Hub struct {
	// Registered clients keyed by connection id; one user may hold
	// several dashboard tabs at once.
	clients map[string]*Client

	// Outbound frames for every client
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	metrics *metrics.Collector

	mu sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub(collector *metrics.Collector) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		metrics:    collector,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			count := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWSClients(count)
			log.Printf("✅ [WEBSOCKET] Client connected: %s (%s), total %d", client.Email, client.Role, count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWSClients(count)
			log.Printf("🔴 [WEBSOCKET] Client disconnected: %s, remaining %d", client.Email, count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full; drop the laggard rather than stall
					// every other dashboard.
					close(client.send)
					delete(h.clients, id)
					log.Printf("⚠️ Client buffer full, disconnecting: %s", client.Email)
				}
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWSClients(count)
		}
	}
}

// Broadcast queues a JSON frame for every connected client.
func (h *Hub) Broadcast(data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("❌ Failed to marshal broadcast message: %v", err)
		return
	}
	h.broadcast <- payload
}

// BroadcastSnapshot pushes a refresh summary. Dashboards refetch the full
// table over REST when they receive one; the frame itself stays small.
func (h *Hub) BroadcastSnapshot(s snapshot.Snapshot) {
	h.Broadcast(map[string]interface{}{
		"type": "snapshot_update",
		"data": map[string]interface{}{
			"engineers":    len(s.Engineers),
			"online":       s.OnlineCount(),
			"sites":        len(s.Sites),
			"warehouses":   len(s.Warehouses),
			"refreshed_at": s.LastRefresh.UTC().Format(time.RFC3339),
		},
	})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
