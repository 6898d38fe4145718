package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache reads through a list of tiers, fastest first. A hit in a
// slower tier is copied into every faster tier that missed.
type LayeredCache struct {
	tiers []Cache

	// backfillTTL bounds how long promoted values stay in faster tiers.
	backfillTTL time.Duration
}

// expiryReader is implemented by tiers that can report how long a key has
// left. ok is false for a missing key; a zero duration means no expiry.
type expiryReader interface {
	TTL(ctx context.Context, key string) (remaining time.Duration, ok bool)
}

// NewLayeredCache stacks tiers in lookup order.
func NewLayeredCache(backfillTTL time.Duration, tiers ...Cache) *LayeredCache {
	return &LayeredCache{tiers: tiers, backfillTTL: backfillTTL}
}

func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	for i, tier := range c.tiers {
		val, ok := tier.Get(ctx, key)
		if !ok {
			continue
		}
		if i == 0 {
			return val, true
		}
		ttl := c.promotionTTL(ctx, tier, key)
		for _, faster := range c.tiers[:i] {
			_ = faster.Set(ctx, key, val, ttl)
		}
		return val, true
	}
	return nil, false
}

// promotionTTL is backfillTTL, shortened to what the source tier has left so
// a promoted copy never outlives the original.
func (c *LayeredCache) promotionTTL(ctx context.Context, source Cache, key string) time.Duration {
	r, ok := source.(expiryReader)
	if !ok {
		return c.backfillTTL
	}
	remaining, ok := r.TTL(ctx, key)
	if !ok || remaining <= 0 {
		return c.backfillTTL
	}
	if c.backfillTTL <= 0 || remaining < c.backfillTTL {
		return remaining
	}
	return c.backfillTTL
}

// Set writes every tier, so a failing tier does not keep slower ones stale.
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var errs []error
	for _, tier := range c.tiers {
		errs = append(errs, tier.Set(ctx, key, value, ttl))
	}
	return errors.Join(errs...)
}

func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, tier := range c.tiers {
		errs = append(errs, tier.Delete(ctx, key))
	}
	return errors.Join(errs...)
}

func (c *LayeredCache) Clear(ctx context.Context) error {
	var errs []error
	for _, tier := range c.tiers {
		errs = append(errs, tier.Clear(ctx))
	}
	return errors.Join(errs...)
}

// Close releases tiers that hold connections.
func (c *LayeredCache) Close() error {
	var errs []error
	for _, tier := range c.tiers {
		if closer, ok := tier.(interface{ Close() error }); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
