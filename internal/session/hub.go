package session

import (
	"sync"

	"go.uber.org/zap"
)

// Listener receives a snapshot of every state published for its session.
// It runs on the publisher's goroutine and must not block.
type Listener func(state *State)

type listenerEntry struct {
	id       int
	listener Listener
}

// Hub fans state snapshots out to per-session listeners.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string][]listenerEntry
	nextID    int
	logger    *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		listeners: make(map[string][]listenerEntry),
		nextID:    1,
		logger:    logger,
	}
}

// Subscribe registers fn for sessionID and returns the matching unsubscribe func.
func (h *Hub) Subscribe(sessionID string, fn Listener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[sessionID] = append(h.listeners[sessionID], listenerEntry{id: id, listener: fn})
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		entries := h.listeners[sessionID]
		for i, entry := range entries {
			if entry.id == id {
				entries = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		if len(entries) == 0 {
			delete(h.listeners, sessionID)
		} else {
			h.listeners[sessionID] = entries
		}
	}
}

func (h *Hub) Publish(state *State) {
	if state == nil {
		return
	}

	h.mu.RLock()
	entries := make([]listenerEntry, len(h.listeners[state.ID]))
	copy(entries, h.listeners[state.ID])
	h.mu.RUnlock()

	for _, entry := range entries {
		entry.listener(state.Clone())
	}
}

func (h *Hub) ListenerCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[sessionID])
}
