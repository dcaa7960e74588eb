package assets

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements CacheBackend on Redis so multiple instances share
// one warmed shell. Assets are stored as JSON under "asset:<path>".
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed asset cache. Prefix may be empty.
// A ttl of 0 keeps assets until the next deploy overwrites them.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "asset:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(path string) string {
	return c.prefix + path
}

func (c *RedisCache) Get(ctx context.Context, path string) ([]byte, string, bool, error) {
	b, err := c.client.Get(ctx, c.key(path)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, "", false, nil
		}
		return nil, "", false, err
	}
	var a cachedAsset
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, "", false, err
	}
	return a.Body, a.ContentType, true, nil
}

func (c *RedisCache) Put(ctx context.Context, path string, body []byte, contentType string) error {
	b, err := json.Marshal(cachedAsset{ContentType: contentType, Body: body})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(path), b, c.ttl).Err()
}
