// Package cache stores embedding vectors and clause descriptions so repeated
// documents skip the model calls.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/lawlens/internal/model"
)

// ErrUnknownBackend is returned by New for an unrecognized cache.backend value.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Cache defines the interface for caching
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Key builds a namespaced cache key. parts are joined and hashed so keys stay
// short and filesystem safe regardless of the text they describe.
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// memoryTTL caps the in-process tier of a layered cache.
const memoryTTL = time.Hour

// New builds the cache selected by cfg.Backend.
// It returns nil, nil when caching is disabled. A layered cache gains a
// shared redis tier below disk when redis_addr is set.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch strings.ToLower(cfg.Backend) {
	case "memory", "":
		return NewMemoryCache(cfg.TTL), nil
	case "disk":
		return NewDiskCache(cfg.Dir, cfg.TTL), nil
	case "layered":
		tiers := []Cache{NewMemoryCache(memoryTTL), NewDiskCache(cfg.Dir, cfg.TTL)}
		if cfg.RedisAddr != "" {
			tiers = append(tiers, NewRedisCacheFromConfig(cfg))
		}
		return NewLayeredCache(memoryTTL, tiers...), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache: redis_addr is required")
		}
		return NewRedisCacheFromConfig(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
