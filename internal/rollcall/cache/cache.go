// Package cache holds rendered artefacts the server hands out repeatedly,
// chiefly the roster feed served on GET ?registry=1.
package cache

import (
	"context"
	"time"
)

// Cache is satisfied by MemoryCache (single instance) and RedisCache
// (several server replicas behind one endpoint).
type Cache interface {
	// Get returns ErrCacheMiss when key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type CacheError string

func (e CacheError) Error() string { return string(e) }

const ErrCacheMiss CacheError = "cache miss"

// GetOrSet returns the cached value for key, computing and storing it with
// fn on a miss.  A failing Set is ignored; the computed value is still
// returned.
func GetOrSet(ctx context.Context, c Cache, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, bool, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, true, nil
	}
	v, err := fn()
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, v, ttl)
	return v, false, nil
}
