// Package memory provides an in-process implementation of cache.Cache.
// It backs tests and single-instance deployments where Redis is not
// worth operating.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/marcelofeitoza/crowd-estate/internal/cache"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is an in-memory implementation of cache.Cache. Expired entries
// are dropped lazily on Get and swept periodically.
type Cache struct {
	mu   sync.RWMutex
	data map[string]entry

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source. Used in tests to step TTLs
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates an in-memory cache and starts its sweep loop.
func New(opts ...Option) *Cache {
	c := &Cache{
		data: make(map[string]entry),
		now:  time.Now,
		stop: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.sweep()
	return c
}

// Get retrieves the value at key. Returns cache.ErrMiss if the key is
// absent or expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return nil, cache.ErrMiss
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock; Set may have raced in.
		if e2, ok := c.data[key]; ok && e2.expired(c.now()) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return nil, cache.ErrMiss
	}

	// Return a copy to prevent external mutation
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores value at key with the given TTL.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	e := entry{value: stored}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.data[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes the given keys.
func (c *Cache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.data, key)
	}
	c.mu.Unlock()
	return nil
}

// Ping always succeeds for the in-memory backend.
func (c *Cache) Ping(_ context.Context) error {
	return nil
}

// Close stops the sweep loop.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *Cache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := c.now()
			c.mu.Lock()
			for key, e := range c.data {
				if e.expired(now) {
					delete(c.data, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Verify interface compliance at compile time.
var _ cache.Cache = (*Cache)(nil)
