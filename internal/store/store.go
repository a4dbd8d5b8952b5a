package store

import (
	"context"
	"sync"
)

// Store keeps the last snapshot per view. Lists are always re-fetched after a
// mutation; the store only resolves row actions by id and re-renders a view
// whose mutation failed.
type Store interface {
	Load(ctx context.Context, view View) (Snapshot, bool, error)
	Save(ctx context.Context, view View, s Snapshot) error
	Apply(ctx context.Context, view View, m Mutation) (Snapshot, error)
}

type MemoryStore struct {
	mu    sync.RWMutex
	views map[View]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{views: make(map[View]Snapshot)}
}

func (m *MemoryStore) Load(_ context.Context, view View) (Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.views[view]
	return s, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, view View, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[view] = s
	return nil
}

func (m *MemoryStore) Apply(_ context.Context, view View, mut Mutation) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := Apply(m.views[view], mut)
	m.views[view] = next
	return next, nil
}
