// Package counter persists the named integers behind ${counter:...}
// placeholders.
//
// A Store must serialize Increment: concurrent expansions within one
// generation run share the same counters and must never observe a duplicate
// or skipped value.
package counter

import (
	"sync"
)

// Store reads and advances named counters.
type Store interface {
	// Get returns the next value Increment would hand out for key.
	Get(key string) (value int64, ok bool, err error)

	// Increment returns the current value of key, initialising it to start
	// when absent, and stores current+step.
	Increment(key string, start, step int64) (int64, error)
}

// MemoryStore keeps counters for the lifetime of the process.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]int64)}
}

func (m *MemoryStore) Get(key string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Increment(key string, start, step int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.values[key]
	if !ok {
		current = start
	}
	m.values[key] = current + step
	return current, nil
}

// Default is the process-wide store used when no store is injected.
var Default Store = NewMemoryStore()
