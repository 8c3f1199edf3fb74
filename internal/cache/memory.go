package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process Store with per-entry expiry and a size bound.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// NewMemory creates a Memory store. maxEntries <= 0 means unbounded.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		max:     maxEntries,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !m.now().Before(e.expires) {
		return nil, ErrMiss
	}
	return e.value, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	now := m.now()
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && m.max > 0 && len(m.entries) >= m.max {
		m.evict(now)
	}

	m.entries[key] = entry{value: stored, expires: now.Add(m.ttl)}
	return nil
}

// Len returns the number of entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// evict drops expired entries, or the entry closest to expiry when none are.
func (m *Memory) evict(now time.Time) {
	var oldest string
	var oldestAt time.Time

	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			continue
		}
		if oldest == "" || e.expires.Before(oldestAt) {
			oldest, oldestAt = k, e.expires
		}
	}

	if len(m.entries) >= m.max && oldest != "" {
		delete(m.entries, oldest)
	}
}
