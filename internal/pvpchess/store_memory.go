package pvpchess

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process GameStore for development and tests. Records
// are copied on the way in and out.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*Record)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return r.Clone(), nil
}

func (m *MemoryStore) Create(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.games[r.ID]; exists {
		return fmt.Errorf("%w: %s", ErrGameExists, r.ID)
	}
	m.games[r.ID] = r.Clone()
	return nil
}

func (m *MemoryStore) Update(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, exists := m.games[r.ID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrGameNotFound, r.ID)
	}
	if cur.Version != r.Version {
		return fmt.Errorf("%w: %s (stored v%d, read v%d)", ErrStaleRecord, r.ID, cur.Version, r.Version)
	}
	next := r.Clone()
	next.Version++
	m.games[r.ID] = next
	r.Version = next.Version
	return nil
}
