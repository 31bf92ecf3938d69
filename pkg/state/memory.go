package state

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and any
// session that should not persist across reloads.
type MemoryStore struct {
	mu       sync.RWMutex
	payloads map[string]string
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payloads: make(map[string]string)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.payloads[key]
	return payload, ok, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, key string, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payloads == nil {
		s.payloads = make(map[string]string)
	}
	s.payloads[key] = payload
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payloads)
}
