package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"insurance_portal_backend/internal/offers/domain"
)

// Registry remembers the current order per wizard pass. Activating a new
// order supersedes the previous one, so late results for the old order can
// be recognized and discarded.
type Registry interface {
	Activate(ctx context.Context, passID string, order domain.Order) error
	IsCurrent(ctx context.Context, passID string, orderID int64) (bool, error)
}

const registryKeyPrefix = "offers:pass:"

// RedisRegistry shares pass state between API replicas.
type RedisRegistry struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRegistry creates a Redis-backed registry; entries expire after ttl.
func NewRedisRegistry(client redis.UniversalClient, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) Activate(ctx context.Context, passID string, order domain.Order) error {
	if err := r.client.Set(ctx, registryKeyPrefix+passID, order.ID, r.ttl).Err(); err != nil {
		return fmt.Errorf("activate order %d: %w", order.ID, err)
	}
	return nil
}

func (r *RedisRegistry) IsCurrent(ctx context.Context, passID string, orderID int64) (bool, error) {
	raw, err := r.client.Get(ctx, registryKeyPrefix+passID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read current order: %w", err)
	}
	current, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse current order: %w", err)
	}
	return current == orderID, nil
}

// MemoryRegistry is used when Redis is not configured.
type MemoryRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	orderID   int64
	expiresAt time.Time
}

// NewMemoryRegistry creates a process-local registry.
func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (r *MemoryRegistry) Activate(_ context.Context, passID string, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for key, entry := range r.entries {
		if !now.Before(entry.expiresAt) {
			delete(r.entries, key)
		}
	}
	r.entries[passID] = memoryEntry{orderID: order.ID, expiresAt: now.Add(r.ttl)}
	return nil
}

func (r *MemoryRegistry) IsCurrent(_ context.Context, passID string, orderID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[passID]
	if !ok || !r.now().Before(entry.expiresAt) {
		return false, nil
	}
	return entry.orderID == orderID, nil
}
