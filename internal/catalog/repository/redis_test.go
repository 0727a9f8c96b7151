package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisCacheRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	if _, err := cache.Load(ctx); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	products := []Product{{ID: "allianz-rca", Family: "rca", VendorName: "Allianz-Tiriac", Name: "RCA", Active: true}}
	if err := cache.Store(ctx, products, time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}

	loaded, err := cache.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].VendorName != "Allianz-Tiriac" {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := cache.Load(ctx); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired snapshot to miss, got %v", err)
	}
}
