package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"insurance_portal_backend/internal/offers/domain"
)

func assertSupersession(t *testing.T, registry Registry) {
	t.Helper()
	ctx := context.Background()

	if current, err := registry.IsCurrent(ctx, "pass-1", 10); err != nil || current {
		t.Fatalf("expected unknown pass to be not current, got %v (%v)", current, err)
	}

	if err := registry.Activate(ctx, "pass-1", domain.Order{ID: 10}); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if current, _ := registry.IsCurrent(ctx, "pass-1", 10); !current {
		t.Fatal("expected order 10 to be current")
	}

	if err := registry.Activate(ctx, "pass-1", domain.Order{ID: 11}); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if current, _ := registry.IsCurrent(ctx, "pass-1", 10); current {
		t.Fatal("expected order 10 to be superseded")
	}
	if current, _ := registry.IsCurrent(ctx, "pass-1", 11); !current {
		t.Fatal("expected order 11 to be current")
	}
	if current, _ := registry.IsCurrent(ctx, "pass-2", 11); current {
		t.Fatal("expected passes to be independent")
	}
}

func TestMemoryRegistrySupersedes(t *testing.T) {
	assertSupersession(t, NewMemoryRegistry(time.Hour))
}

func TestRedisRegistrySupersedes(t *testing.T) {
	mr := miniredis.RunT(t)
	assertSupersession(t, NewRedisRegistry(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour))
}

func TestMemoryRegistryExpires(t *testing.T) {
	registry := NewMemoryRegistry(time.Minute)
	now := time.Now()
	registry.now = func() time.Time { return now }

	_ = registry.Activate(context.Background(), "pass-1", domain.Order{ID: 5})
	now = now.Add(2 * time.Minute)
	if current, _ := registry.IsCurrent(context.Background(), "pass-1", 5); current {
		t.Fatal("expected expired entry to be not current")
	}
}
