package store

import (
	"sync"

	"github.com/cuemby/livestatus/pkg/types"
)

// LogStore holds the rows of the log table. Events are append-only and
// returned in ingestion order.
type LogStore interface {
	Append(ev *types.LogEvent) error
	Events() ([]*types.LogEvent, error)
	Len() int
	Reset() error
	Close() error
}

// MemoryLogStore keeps log events in memory. With a positive limit the
// oldest events are dropped once the limit is reached.
type MemoryLogStore struct {
	mu     sync.RWMutex
	events []*types.LogEvent
	limit  int
}

// NewMemoryLogStore creates a memory log store; limit 0 means unbounded
func NewMemoryLogStore(limit int) *MemoryLogStore {
	return &MemoryLogStore{limit: limit}
}

// Append adds an event
func (m *MemoryLogStore) Append(ev *types.LogEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, ev)
	if m.limit > 0 && len(m.events) > m.limit {
		drop := len(m.events) - m.limit
		m.events = append([]*types.LogEvent(nil), m.events[drop:]...)
	}
	return nil
}

// Events returns a copy of the event list
func (m *MemoryLogStore) Events() ([]*types.LogEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*types.LogEvent(nil), m.events...), nil
}

// Len returns the number of stored events
func (m *MemoryLogStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Reset drops every event
func (m *MemoryLogStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	return nil
}

// Close is a no-op
func (m *MemoryLogStore) Close() error {
	return nil
}
