// Package ws pushes sync events to connected browsers.
package ws

import (
	"sync"

	"codeleague/internal/logger"

	"github.com/bytedance/sonic"
)

// Hub fans events out to every connected client. A client whose send buffer is full
// is dropped rather than allowed to stall the broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	logger.Debug("ws client registered", "user_id", c.UserID, "clients", n)
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	logger.Debug("ws client unregistered", "user_id", c.UserID, "clients", n)
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast marshals event once and queues it for every client.
func (h *Hub) Broadcast(event interface{}) {
	msg, err := sonic.Marshal(event)
	if err != nil {
		logger.Error("ws broadcast marshal failed", "error", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Warn("ws client too slow, dropping", "user_id", c.UserID)
		h.Unregister(c)
	}
}

// Close disconnects every client, used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()
}
