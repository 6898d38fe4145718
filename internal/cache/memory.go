package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const maxSweepInterval = 10 * time.Minute

// MemoryCache is a process-local cache backed by go-cache. Values are copied
// on the way in and out so callers may reuse their buffers.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries live for defaultTTL.
// A non-positive defaultTTL keeps entries until they are deleted.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		return &MemoryCache{items: gocache.New(gocache.NoExpiration, 0)}
	}
	return &MemoryCache{items: gocache.New(defaultTTL, min(defaultTTL, maxSweepInterval))}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return clone(b), true
}

// Set stores value. ttl 0 means the cache default.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, clone(value), ttl)
	return nil
}

// TTL reports the time left on key, 0 for entries that never expire.
func (c *MemoryCache) TTL(_ context.Context, key string) (time.Duration, bool) {
	_, exp, ok := c.items.GetWithExpiration(key)
	if !ok {
		return 0, false
	}
	if exp.IsZero() {
		return 0, true
	}
	return time.Until(exp), true
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.items.Flush()
	return nil
}

// Len reports the number of entries, including expired ones not yet swept.
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
