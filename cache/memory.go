// Package cache provides in-memory caching implementations.
package cache

import (
	"context"
	"sync"
	"time"

	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

// item represents a single cache item with a value and an expiration time.
type item struct {
	value      int64
	expiration time.Time
}

// MemoryCache implements the Cache interface using an in-memory store. It is
// suitable for single-process deployments and tests.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]item
	stop  chan struct{}
}

// NewMemoryCache initializes a new MemoryCache instance.
// It starts a garbage collection goroutine to clean expired items.
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		items: make(map[string]item),
		stop:  make(chan struct{}),
	}
	go cache.gc()
	return cache
}

// Get retrieves a count by key. It returns betafeatures.ErrNotFound when the
// key does not exist or has expired; expired counts as a plain miss.
func (c *MemoryCache) Get(_ context.Context, key string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, exists := c.items[key]
	if !exists {
		return 0, betafeatures.ErrNotFound
	}
	if c.expired(it) {
		return 0, betafeatures.ErrNotFound
	}
	return it.value, nil
}

// Set stores a count with an optional TTL. A TTL of zero means no expiry.
func (c *MemoryCache) Set(_ context.Context, key string, value int64, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiration time.Time
	if ttl > 0 {
		expiration = time.Now().Add(ttl)
	}

	c.items[key] = item{
		value:      value,
		expiration: expiration,
	}
	return nil
}

// Incr atomically increments an existing count, keeping its expiry. Missing
// or expired entries fail with ErrNotFound: an absent counter is repopulated
// only by a full refresh, never backfilled here.
func (c *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	return c.adjust(key, 1)
}

// Decr atomically decrements an existing count, keeping its expiry. The
// value is not clamped and may go negative transiently.
func (c *MemoryCache) Decr(_ context.Context, key string) (int64, error) {
	return c.adjust(key, -1)
}

func (c *MemoryCache) adjust(key string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, exists := c.items[key]
	if !exists || c.expired(it) {
		return 0, betafeatures.ErrNotFound
	}
	it.value += delta
	c.items[key] = it
	return it.value, nil
}

// Delete removes a key from the memory cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Close stops the garbage collector and clears all items.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	close(c.stop)
	c.items = make(map[string]item)
	return nil
}

func (c *MemoryCache) expired(it item) bool {
	return !it.expiration.IsZero() && time.Now().After(it.expiration)
}

// gc runs a garbage collection process that periodically removes expired items.
func (c *MemoryCache) gc() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			for key, it := range c.items {
				if c.expired(it) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
