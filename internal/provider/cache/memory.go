package cache

import (
	"context"
	"sync"
	"time"

	"github.com/marstr/collection/v2"
)

type memEntry struct {
	expiresAt time.Time
	data      []byte
}

// MemoryStore keeps at most capacity entries, evicting the least recently
// used one when full.
type MemoryStore struct {
	mu  sync.Mutex
	lru *collection.LRUCache[string, memEntry]
	now func() time.Time
}

func NewMemoryStore(capacity uint) *MemoryStore {
	if capacity == 0 {
		capacity = 1
	}
	return &MemoryStore{
		lru: collection.NewLRUCache[string, memEntry](capacity),
		now: time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lru.Get(key)
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

func (m *MemoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Put(key, memEntry{expiresAt: m.now().Add(ttl), data: val})
}

func (m *MemoryStore) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Put(key, memEntry{})
}
