// Package store provides a thread-safe, in-memory implementation of the
// strategy.Persister interface. It is suitable for tests, the CLI, or any
// scenario where created objects do not need to outlive the process.
package store

import "sync"

// Memory records every instance handed to the create strategy's default
// finalizer, in save order.
type Memory struct {
	mu    sync.Mutex
	saved []any
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Save implements strategy.Persister.
func (m *Memory) Save(instance any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, instance)
	return nil
}

// Saved returns a snapshot of everything saved so far.
func (m *Memory) Saved() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.saved))
	copy(out, m.saved)
	return out
}

// Len returns the number of saved instances.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}
