package cache

import (
	"sync"
	"time"
)

// TTL constants for different data types
const (
	// Static data - partition tables and sysfs topology don't change while we run
	TTLStatic = 24 * time.Hour

	// Slow-moving - driver bindings, device map resolution
	TTLSlow = 1 * time.Hour
)

// Entry holds a cached value with expiration
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// IsExpired returns true if the entry has expired
func (e *Entry[V]) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Cache provides thread-safe TTL-based caching keyed by string
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]*Entry[V]
}

// New creates a new cache instance
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]*Entry[V]),
	}
}

// Get retrieves a value from cache. ok is false if the key is missing or expired.
func (c *Cache[V]) Get(key string) (v V, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[key]
	if !found || entry.IsExpired() {
		return v, false
	}
	return entry.Value, true
}

// Set stores a value with the given TTL
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &Entry[V]{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// SetSlow stores slow-moving data
func (c *Cache[V]) SetSlow(key string, value V) {
	c.Set(key, value, TTLSlow)
}

// GetOrLoad returns the cached value for key, calling load and caching its
// result for ttl on a miss. Errors are not cached.
func (c *Cache[V]) GetOrLoad(key string, ttl time.Duration, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v, ttl)
	return v, nil
}
