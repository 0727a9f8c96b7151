package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"insurance_portal_backend/internal/catalog/repository"
	"insurance_portal_backend/platform/logger"
)

type fakeTransport struct {
	calls atomic.Int32
	body  string
	err   error
}

func (f *fakeTransport) Get(_ context.Context, path, _ string, out any) error {
	f.calls.Add(1)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.body), out)
}

func (f *fakeTransport) Post(context.Context, string, string, any, any) error {
	return errors.New("not used")
}

const catalogBody = `[
	{"id": "groupama-rca", "category": "RCA", "name": "RCA Groupama", "vendor": {"name": "Groupama"}},
	{"id": "allianz-rca", "category": "rca", "name": "RCA", "vendor": {"name": "Allianz-Tiriac", "logo": "https://cdn/allianz.png"}},
	{"id": "allianz-casco", "category": "casco", "name": "CASCO", "vendor": {"name": "Allianz-Tiriac"}},
	{"id": "old-rca", "category": "rca", "name": "RCA vechi", "active": false, "vendor": {"name": "Old"}},
	{"id": "", "category": "rca", "name": "broken"}
]`

func TestByFamilyFiltersInactiveAndOrdersByVendor(t *testing.T) {
	svc := New(&fakeTransport{body: catalogBody}, nil, time.Hour, logger.Nop())

	products := svc.ByFamily(context.Background(), "rca")
	if len(products) != 2 {
		t.Fatalf("expected 2 active rca products, got %d", len(products))
	}
	if products[0].ID != "allianz-rca" || products[1].ID != "groupama-rca" {
		t.Fatalf("unexpected order %s, %s", products[0].ID, products[1].ID)
	}

	product, ok := svc.Lookup(context.Background(), "allianz-rca")
	if !ok || product.LogoURL != "https://cdn/allianz.png" {
		t.Fatalf("expected lookup to return logo, got %+v (%v)", product, ok)
	}
}

func TestMemoryTierAvoidsRepeatedFetches(t *testing.T) {
	transport := &fakeTransport{body: catalogBody}
	svc := New(transport, nil, time.Hour, logger.Nop())

	for i := 0; i < 3; i++ {
		svc.Lookup(context.Background(), "allianz-rca")
	}
	if got := transport.calls.Load(); got != 1 {
		t.Fatalf("expected 1 backend call, got %d", got)
	}
}

func TestRedisTierIsSharedBetweenInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := repository.NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	warm := New(&fakeTransport{body: catalogBody}, cache, time.Hour, logger.Nop())
	if err := warm.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	cold := &fakeTransport{err: errors.New("backend down")}
	svc := New(cold, cache, time.Hour, logger.Nop())
	if _, ok := svc.Lookup(context.Background(), "allianz-casco"); !ok {
		t.Fatal("expected product from shared snapshot")
	}
	if got := cold.calls.Load(); got != 0 {
		t.Fatalf("expected no backend call on redis hit, got %d", got)
	}
}

func TestStaleEntriesSurviveFailedRefresh(t *testing.T) {
	transport := &fakeTransport{body: catalogBody}
	svc := New(transport, nil, time.Minute, logger.Nop())
	now := time.Now()
	svc.now = func() time.Time { return now }

	if _, ok := svc.Lookup(context.Background(), "allianz-rca"); !ok {
		t.Fatal("expected initial lookup to succeed")
	}

	transport.err = errors.New("timeout")
	now = now.Add(2 * time.Minute)
	if _, ok := svc.Lookup(context.Background(), "allianz-rca"); !ok {
		t.Fatal("expected stale entry after failed refresh")
	}
	if got := transport.calls.Load(); got != 2 {
		t.Fatalf("expected a refresh attempt after expiry, got %d calls", got)
	}
}

func TestFailedRefreshBacksOffBeforeRetrying(t *testing.T) {
	transport := &fakeTransport{err: errors.New("timeout")}
	svc := New(transport, nil, time.Hour, logger.Nop())
	now := time.Now()
	svc.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		svc.Lookup(context.Background(), "allianz-rca")
	}
	if got := transport.calls.Load(); got != 1 {
		t.Fatalf("expected 1 backend call during backoff, got %d", got)
	}

	transport.err = nil
	transport.body = catalogBody
	now = now.Add(refreshBackoff)
	if _, ok := svc.Lookup(context.Background(), "allianz-rca"); !ok {
		t.Fatal("expected lookup to succeed once the backoff passed")
	}
	if got := transport.calls.Load(); got != 2 {
		t.Fatalf("expected a retry after backoff, got %d calls", got)
	}
}
