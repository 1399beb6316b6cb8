package notify

import (
	"context"
	"sync"
)

// MemoryStore is an in-process StateStore. Used by tests and by the memory
// data backend; production uses the SQLite-backed store.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]string)}
}

func (s *MemoryStore) LastShown(_ context.Context, ownerID string, kind AlertKind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[ownerID+"/"+string(kind)], nil
}

func (s *MemoryStore) MarkShown(_ context.Context, ownerID string, kind AlertKind, dayKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[ownerID+"/"+string(kind)] = dayKey
	return nil
}
