package cache

import (
	"time"

	"github.com/maypok86/otter/v2"
)

// Cache is a bounded in-memory cache whose entries expire a fixed duration
// after they were written. A nil *Cache is valid and caches nothing.
type Cache[V any] struct {
	store    *otter.Cache[string, V]
	duration time.Duration
}

// New returns a cache holding up to size entries for duration each. A
// non-positive duration disables caching and returns nil.
func New[V any](size int, duration time.Duration) *Cache[V] {
	if duration <= 0 {
		return nil
	}
	return &Cache[V]{
		store: otter.Must(&otter.Options[string, V]{
			MaximumSize:      size,
			ExpiryCalculator: otter.ExpiryWriting[string, V](duration),
		}),
		duration: duration,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	if c == nil {
		var zero V
		return zero, false
	}
	return c.store.GetIfPresent(key)
}

// Set stores value under key.
func (c *Cache[V]) Set(key string, value V) {
	if c == nil {
		return
	}
	c.store.Set(key, value)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	if c == nil {
		return
	}
	c.store.InvalidateAll()
}

// Duration returns the entry lifetime, zero for a disabled cache.
func (c *Cache[V]) Duration() time.Duration {
	if c == nil {
		return 0
	}
	return c.duration
}
