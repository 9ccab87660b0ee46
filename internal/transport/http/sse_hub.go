package http

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"vn.io.arda/reminder/internal/domain"
)

// Client represents a connected SSE client.
type Client struct {
	owner string
	send  chan []byte
}

// Hub manages all active SSE client connections, keyed by owner.
// Single-instance model: all broadcast is in-process.
type Hub struct {
	mu      sync.RWMutex
	clients map[string][]*Client // owner -> clients
}

// NewHub creates a new SSE Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string][]*Client),
	}
}

// Register adds a new SSE client.
func (h *Hub) Register(owner string, send chan []byte) *Client {
	c := &Client{owner: owner, send: send}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[owner] = append(h.clients[owner], c)

	log.Debug().Str("owner", owner).Msg("SSE client connected")
	return c
}

// Unregister removes an SSE client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[c.owner]
	updated := make([]*Client, 0, len(clients))
	for _, existing := range clients {
		if existing != c {
			updated = append(updated, existing)
		}
	}

	if len(updated) == 0 {
		delete(h.clients, c.owner)
	} else {
		h.clients[c.owner] = updated
	}

	log.Debug().Str("owner", c.owner).Msg("SSE client disconnected")
}

// Broadcast sends a fired notification to every connected client of owner.
// This satisfies the dispatch.Broadcaster interface.
func (h *Hub) Broadcast(owner string, n domain.ScheduledNotification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.clients[owner]
	if len(clients) == 0 {
		return
	}

	msg := buildSSEMessage(n)

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// Client is slow/disconnected, skip
			log.Warn().Str("owner", owner).Str("identifier", n.Identifier).Msg("SSE client send buffer full, skipping")
		}
	}
}

// ConnectedCount returns the total number of connected SSE clients.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

// buildSSEMessage formats a notification as an SSE data frame.
func buildSSEMessage(n any) []byte {
	b, _ := json.Marshal(n)
	return []byte("event: notification\ndata: " + string(b) + "\n\n")
}
