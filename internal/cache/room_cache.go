// Package cache holds read-through caches in front of the store. Cached data
// is never consulted by a write path.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	roomKeyPrefix     = "reservation:rooms:"
	roomGenerationKey = roomKeyPrefix + "gen"
)

// RedisRoomCache keeps serialized room listings in Redis.
type RedisRoomCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRoomCache connects to addr.
func NewRedisRoomCache(addr string, ttl time.Duration, logger *zap.Logger) *RedisRoomCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	return &RedisRoomCache{client: client, ttl: ttl, logger: logger}
}

// Ping checks connectivity.
func (c *RedisRoomCache) Ping(ctx context.Context) error {
	const op = "cache.redis.Ping"
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Get returns the cached value for key. Misses and Redis failures both
// report ok=false.
func (c *RedisRoomCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, roomKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("room cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

// Set stores value under key with the configured TTL.
func (c *RedisRoomCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, roomKeyPrefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("room cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Generation returns the current listing generation. A missing counter is
// generation zero.
func (c *RedisRoomCache) Generation(ctx context.Context) (int64, bool) {
	gen, err := c.client.Get(ctx, roomGenerationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		c.logger.Warn("room cache generation read failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}

// Invalidate advances the generation. Entries written under older
// generations are never read again and expire with their TTL.
func (c *RedisRoomCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, roomGenerationKey).Err(); err != nil {
		c.logger.Error("room cache invalidation failed", zap.Error(err))
	}
}

// Close closes the client.
func (c *RedisRoomCache) Close() error {
	const op = "cache.redis.Close"
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
