// Package metadata provides caching and orchestration for external metadata APIs.
package metadata

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fixed or stepped clock.
type Clock func() time.Time

type cacheEntry[V any] struct {
	value   V
	expires time.Time
}

// Cache is an in-process TTL cache. Expired entries are removed by the Get
// that notices them; there is no background sweep and no capacity bound.
// Safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]cacheEntry[V]
	now     Clock
}

// NewCache creates an empty cache. A nil clock uses time.Now.
func NewCache[K comparable, V any](clock Clock) *Cache[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &Cache[K, V]{
		entries: make(map[K]cacheEntry[V]),
		now:     clock,
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key, expiring ttl after now.
func (c *Cache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[V]{
		value:   value,
		expires: c.now().Add(ttl),
	}
}

// Delete removes key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
