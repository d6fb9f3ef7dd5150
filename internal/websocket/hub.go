package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// TypeStateChanged tells the browser its view session changed outside the
// request it is waiting on.
const TypeStateChanged = "state_changed"

// Message is the notification pushed to a session's clients.
type Message struct {
	Type    string `json:"type"`
	Session string `json:"session"`
}

// Hub tracks connected clients per view session.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger.With("component", "websocket"),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.session]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.session] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.session]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.session)
		}
	}
	h.mu.Unlock()
}

// Notify tells every client of the session that its state changed. It never
// blocks; a client with a full buffer already has a refresh pending.
func (h *Hub) Notify(sessionID string) {
	data, err := json.Marshal(Message{Type: TypeStateChanged, Session: sessionID})
	if err != nil {
		h.logger.Error("marshal notification", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[sessionID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
