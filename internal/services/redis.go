package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"bcflats_backend/internal/logger"
)

// RedisCache provides caching for expensive aggregate reads, currently
// the dashboard statistics.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client and verifies the
// connection.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Get().Info("redis connection established")
	return &RedisCache{client: client}, nil
}

// Set stores a value in cache with expiration.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get retrieves a value from cache into dest.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key from cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetOrSet retrieves a value from cache, or calls fn to compute and
// cache it. c may be nil (cache disabled), in which case fn is always
// called and nothing is stored.
func GetOrSet[T any](c *RedisCache, ctx context.Context, key string, expiration time.Duration, fn func() (T, error)) (T, error) {
	var result T

	if c != nil {
		if err := c.Get(ctx, key, &result); err == nil {
			return result, nil
		}
	}

	result, err := fn()
	if err != nil {
		return result, err
	}

	if c != nil {
		// Cache set failures are not worth surfacing to the caller.
		_ = c.Set(ctx, key, result, expiration)
	}

	return result, nil
}
