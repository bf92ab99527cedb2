package registry

import (
	"sync"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/contracts"
)

// Registry maps user ids to their live connection on this process. Fan-out
// handlers and connection teardown race on the same keys, so all access goes
// through the map-level lock.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]contracts.Client // user_id → client
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]contracts.Client),
	}
}

// Register stores c for its user and returns any prior connection for the
// same identity. Last registration wins; the caller decides what to do with
// the loser (the gateway force-closes it).
func (h *Registry) Register(c contracts.Client) contracts.Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	prior := h.clients[c.UserID()]
	h.clients[c.UserID()] = c
	if prior == c {
		return nil
	}
	return prior
}

// Unregister removes c only when it is still the registered connection for
// its user, so a superseded connection cannot evict its replacement.
func (h *Registry) Unregister(c contracts.Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur, ok := h.clients[c.UserID()]
	if !ok || cur != c {
		return false
	}
	delete(h.clients, c.UserID())
	return true
}

func (h *Registry) Get(userID string) (contracts.Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[userID]
	return c, ok
}

// Remove drops whatever is registered for userID, returning it so the caller
// can close a connection the normal teardown never reached.
func (h *Registry) Remove(userID string) contracts.Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur := h.clients[userID]
	delete(h.clients, userID)
	return cur
}
