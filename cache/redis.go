// cache/redis.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

// redisClient is the slice of the go-redis API the cache uses, split out so
// tests can substitute a mock client.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Decr(ctx context.Context, key string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisCache implements the Cache interface backed by Redis. Counts are
// stored as plain integers so INCR/DECR operate server-side.
type RedisCache struct {
	client redisClient
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(addr string, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Get retrieves a count. A missing key maps to betafeatures.ErrNotFound.
func (c *RedisCache) Get(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, betafeatures.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get from redis: %w", err)
	}
	return n, nil
}

// Set stores a count with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

// Incr increments an existing count. Redis INCR would create a missing key
// with no TTL, which would pin a stale counter forever, so absent keys are
// rejected first. The existence check and the increment are not atomic
// together; the refresh cycle absorbs the race.
func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	if err := c.requireKey(ctx, key); err != nil {
		return 0, err
	}
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to incr in redis: %w", err)
	}
	return n, nil
}

// Decr decrements an existing count. The value is not clamped at zero.
func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	if err := c.requireKey(ctx, key); err != nil {
		return 0, err
	}
	n, err := c.client.Decr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to decr in redis: %w", err)
	}
	return n, nil
}

// Delete removes a key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) requireKey(ctx context.Context, key string) error {
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check key in redis: %w", err)
	}
	if exists == 0 {
		return betafeatures.ErrNotFound
	}
	return nil
}
