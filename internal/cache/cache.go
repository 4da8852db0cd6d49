// Package cache wraps an optional Redis client. When Redis is unreachable the
// application runs without caching rather than failing to start.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a thin TTL cache over Redis. All methods are safe to call on a
// disabled cache and act as no-ops/misses.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at addr. On failure it logs and returns a disabled
// cache.
func New(addr string, logger *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis not available, running without cache", zap.String("addr", addr), zap.Error(err))
		return &Cache{}
	}
	logger.Info("redis connected", zap.String("addr", addr))
	return &Cache{client: client}
}

// Enabled reports whether a Redis connection is live.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached value and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value under key with the given TTL, best effort.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	c.client.Set(ctx, key, value, ttl)
}

// Delete drops a key, best effort.
func (c *Cache) Delete(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	c.client.Del(ctx, key)
}
