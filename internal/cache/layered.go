package cache

import (
	"context"
	"errors"
	"time"
)

// Layered reads through a fast near cache to a shared far cache and promotes
// far hits into the near layer.
type Layered struct {
	near Cache
	far  Cache
}

func NewLayered(near, far Cache) *Layered {
	return &Layered{near: near, far: far}
}

func (c *Layered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, found, err := c.near.Get(ctx, key); err == nil && found {
		return val, true, nil
	}

	val, found, err := c.far.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	// Promote with the near layer's default TTL.
	_ = c.near.Set(ctx, key, val, 0)
	return val, true, nil
}

func (c *Layered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.Join(
		c.near.Set(ctx, key, value, ttl),
		c.far.Set(ctx, key, value, ttl),
	)
}

func (c *Layered) Delete(ctx context.Context, key string) error {
	return errors.Join(
		c.near.Delete(ctx, key),
		c.far.Delete(ctx, key),
	)
}
