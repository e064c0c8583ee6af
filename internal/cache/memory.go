package cache

import (
	"context"
	"sync"
	"time"

	"github.com/leapstack-labs/leapview/pkg/core"
)

// DefaultMaxEntries bounds a MemoryBackend created with a non-positive size.
const DefaultMaxEntries = 256

type memoryEntry struct {
	table   *core.Table
	expires time.Time // zero means never
}

// MemoryBackend is a bounded in-process Backend. When full, the oldest
// entry is evicted first.
type MemoryBackend struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	order      []string
	maxEntries int
	now        func() time.Time
}

// NewMemoryBackend creates a MemoryBackend holding at most maxEntries tables.
func NewMemoryBackend(maxEntries int) *MemoryBackend {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryBackend{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, key string) (*core.Table, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.remove(key)
		return nil, false, nil
	}
	return e.table, true, nil
}

// Set implements Backend. Tables are immutable, so the pointer is stored as is.
func (m *MemoryBackend) Set(_ context.Context, key string, t *core.Table, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{table: t}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}

	if _, exists := m.entries[key]; exists {
		m.entries[key] = e
		return nil
	}
	for len(m.order) >= m.maxEntries {
		m.remove(m.order[0])
	}
	m.entries[key] = e
	m.order = append(m.order, key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close drops every entry.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
	m.order = nil
	return nil
}

func (m *MemoryBackend) remove(key string) {
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

var _ Backend = (*MemoryBackend)(nil)
