// Package cache provides a generic in-memory TTL cache backed by
// jellydator/ttlcache.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache is a concurrency-safe map with per-entry expiry. Reads do not
// extend an entry's lifetime.
type Cache[K comparable, V any] struct {
	items *ttlcache.Cache[K, V]

	stopOnce sync.Once
}

// New creates a cache and starts its expiry janitor. Call Close to stop it.
func New[K comparable, V any]() *Cache[K, V] {
	c := &Cache[K, V]{
		items: ttlcache.New[K, V](
			ttlcache.WithDisableTouchOnHit[K, V](),
		),
	}
	go c.items.Start()
	return c
}

// Get returns the value for key when present and not expired.
func (c *Cache[K, V]) Get(_ context.Context, key K) (V, bool) {
	item := c.items.Get(key)
	if item == nil || item.IsExpired() {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

// Set stores value for ttl. A non-positive ttl never expires.
func (c *Cache[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	c.items.Set(key, value, ttl)
}

// Delete removes key.
func (c *Cache[K, V]) Delete(_ context.Context, key K) {
	c.items.Delete(key)
}

// Len returns the number of stored entries.
func (c *Cache[K, V]) Len() int {
	return c.items.Len()
}

// Close stops the janitor.
func (c *Cache[K, V]) Close() {
	c.stopOnce.Do(c.items.Stop)
}
