package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-backend/pkg/cache"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint used while walking keys for DeletePattern
const scanBatch = 100

// RedisCache implements cache.Cache with JSON values
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) cache.Cache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// Corrupt entry: drop it and report a miss
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// DeletePattern walks the keyspace with SCAN, never KEYS, so a large
// cache does not block Redis. Keys are removed only after the walk ends
// so deletions cannot shift the cursor.
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", pattern, err)
	}

	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := c.Delete(ctx, keys[start:end]...); err != nil {
			return err
		}
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
