// ABOUTME: Typed in-memory cache with TTL-based expiration
// ABOUTME: Holds public catalog responses so browsing does not refetch every page

package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache maps string keys to values that expire after a fixed TTL.
// A zero or negative TTL disables caching: Set is a no-op.
type Cache[V any] struct {
	mu      sync.RWMutex
	items   map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	stopped sync.Once
}

// New creates a cache and starts a sweeper that drops expired entries
func New[V any](ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		items: make(map[string]entry[V]),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if ttl > 0 {
		go c.sweep(time.Minute)
	}
	return c
}

// Get returns the cached value for key if it has not expired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return zero, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.value, true
}

// Set stores value under key for the cache's TTL
func (c *Cache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	slog.Debug("Cache set", "key", key, "ttl", c.ttl)
}

// Delete removes key
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Purge removes every entry
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	c.items = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the sweeper. The cache stays usable.
func (c *Cache[V]) Close() {
	c.stopped.Do(func() { close(c.stop) })
}

func (c *Cache[V]) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache[V]) removeExpired() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
		}
	}
}
