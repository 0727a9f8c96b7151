package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const snapshotKey = "catalog:products:v1"

// RedisCache keeps the catalog snapshot under a single key.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache creates a Redis-backed catalog cache.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// Load returns the cached snapshot or ErrCacheMiss.
func (c *RedisCache) Load(ctx context.Context) ([]Product, error) {
	raw, err := c.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	return products, nil
}

// Store replaces the snapshot.
func (c *RedisCache) Store(ctx context.Context, products []Product, ttl time.Duration) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode catalog snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store catalog snapshot: %w", err)
	}
	return nil
}
