package storage

import (
	"context"
	"sort"
	"sync"

	"costwise-hq/atlas/pkg/budget"
)

// MemoryStore implements budget.Store with an in-memory map. State is
// lost on restart; intended for tests and single-run tooling.
type MemoryStore struct {
	mu       sync.RWMutex
	settings map[string]*budget.Settings
}

// NewMemoryStore creates an empty in-memory settings store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settings: make(map[string]*budget.Settings)}
}

// Save implements budget.Store.
func (m *MemoryStore) Save(_ context.Context, tenantID string, s *budget.Settings) error {
	copied := *s
	copied.AccountBudgets = append([]budget.AccountBudget(nil), s.AccountBudgets...)

	m.mu.Lock()
	m.settings[tenantID] = &copied
	m.mu.Unlock()
	return nil
}

// Load implements budget.Store. Returns (nil, nil) when absent.
func (m *MemoryStore) Load(_ context.Context, tenantID string) (*budget.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[tenantID]
	if !ok {
		return nil, nil
	}
	copied := *s
	copied.AccountBudgets = append([]budget.AccountBudget(nil), s.AccountBudgets...)
	return &copied, nil
}

// Delete implements budget.Store.
func (m *MemoryStore) Delete(_ context.Context, tenantID string) error {
	m.mu.Lock()
	delete(m.settings, tenantID)
	m.mu.Unlock()
	return nil
}

// Tenants implements budget.Store, returning tenant ids sorted
// ascending.
func (m *MemoryStore) Tenants(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.settings))
	for id := range m.settings {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Close implements budget.Store.
func (m *MemoryStore) Close() error {
	return nil
}
