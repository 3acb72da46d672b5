package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an unbounded in-process cache with background expiry.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory cache. Entries set with a zero ttl use
// defaultTTL; a negative defaultTTL keeps them forever.
func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	if defaultTTL == 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &Memory{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true, nil
	}
	return nil, false, nil
}

func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
	return nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

// Flush removes every entry.
func (c *Memory) Flush() {
	c.cache.Flush()
}
