package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

type cachedDocument struct {
	data     []byte
	storedAt time.Time
}

// MemoryStore is an in-process cache with TTL expiration. When full, the
// oldest entry is evicted.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]cachedDocument
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemoryStore creates a memory store. maxEntries <= 0 means unbounded.
func NewMemoryStore(ttl time.Duration, maxEntries int) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]cachedDocument),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns a copy of the cached bytes if they have not expired.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if cached, ok := m.entries[key]; ok {
		if m.now().Sub(cached.storedAt) < m.ttl {
			return bytes.Clone(cached.data), true, nil
		}
	}
	return nil, false, nil
}

// Set stores a copy of data under key.
func (m *MemoryStore) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.evictLocked(now)
	}
	m.entries[key] = cachedDocument{data: bytes.Clone(data), storedAt: now}
	return nil
}

// Len returns the number of entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// evictLocked drops expired entries, or the oldest one if none expired.
func (m *MemoryStore) evictLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	removed := false
	for k, v := range m.entries {
		if now.Sub(v.storedAt) >= m.ttl {
			delete(m.entries, k)
			removed = true
			continue
		}
		if oldestKey == "" || v.storedAt.Before(oldest) {
			oldestKey, oldest = k, v.storedAt
		}
	}
	if !removed && oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
