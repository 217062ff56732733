// Package cache provides a small TTL cache abstraction with an in-process LRU
// backend and a Redis backend.
package cache

import (
	"context"
	"time"
)

// Cache stores values of type V under string keys for a bounded time.
// A miss, an expired entry and a backend failure all read as (zero, false).
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Namespace prefixes every key, mirroring the cache groups the service uses
// ("release-upgrade-count", "changelog").
func Namespace[V any](c Cache[V], ns string) Cache[V] {
	return &namespaced[V]{inner: c, prefix: ns + ":"}
}

type namespaced[V any] struct {
	inner  Cache[V]
	prefix string
}

func (n *namespaced[V]) Get(ctx context.Context, key string) (V, bool) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	n.inner.Set(ctx, n.prefix+key, value, ttl)
}

func (n *namespaced[V]) Delete(ctx context.Context, key string) {
	n.inner.Delete(ctx, n.prefix+key)
}
