package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemorySize = 1024

type memoryEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is an in-process LRU cache with per-entry expiry.
type Memory[V any] struct {
	lru *lru.Cache[string, memoryEntry[V]]
	now func() time.Time
}

func NewMemory[V any](size int) *Memory[V] {
	if size <= 0 {
		size = defaultMemorySize
	}
	c, err := lru.New[string, memoryEntry[V]](size)
	if err != nil {
		// lru.New only errors on non-positive size which we guard above.
		panic(err)
	}
	return &Memory[V]{lru: c, now: time.Now}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	e, ok := m.lru.Get(key)
	if !ok {
		return zero, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.lru.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Set stores value; a non-positive ttl keeps it until evicted.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) {
	e := memoryEntry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.lru.Add(key, e)
}

func (m *Memory[V]) Delete(_ context.Context, key string) {
	m.lru.Remove(key)
}
