package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a KV with a Redis read-through cache. Redis failures fall back
// to the base store without failing the call.
type Cache struct {
	base  KV
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching KV using the provided Redis client and TTL.
func NewCache(base KV, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := c.load(ctx, key); ok {
		return data, nil
	}
	data, err := c.base.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, data)
	return data, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.base.Set(ctx, key, value); err != nil {
		return err
	}
	c.evict(ctx, key)
	return nil
}

func (c *Cache) load(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			_ = c.redis.Del(ctx, cacheKey(key)).Err()
		}
		return nil, false
	}
	return data, true
}

func (c *Cache) store(ctx context.Context, key string, data []byte) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	_ = c.redis.Set(ctx, cacheKey(key), data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, cacheKey(key)).Result()
}

func cacheKey(key string) string {
	return "cache:" + key
}
