package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore holds the token in memory only. Useful in tests and for
// callers that explicitly do not want durable credentials.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemory creates an empty in-memory token store.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored token, or "".
func (m *MemoryStore) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// Save replaces the stored token.
func (m *MemoryStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear removes the stored token.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
