package adapters

import (
	"context"
	"testing"

	"insurance_portal_backend/internal/events"
	"insurance_portal_backend/platform/logger"
)

type fakeRefresher struct{ reasons []string }

func (f *fakeRefresher) EnqueueCatalogRefresh(_ context.Context, reason string) error {
	f.reasons = append(f.reasons, reason)
	return nil
}

func TestCatalogDriftHandlerOnlyReactsToDrops(t *testing.T) {
	refresher := &fakeRefresher{}
	bus := events.NewInMemoryBus(logger.Nop())
	NewCatalogDriftHandler(refresher, logger.Nop()).Register(bus)

	if err := bus.PublishSync(context.Background(), events.OffersQuoted{OrderID: 1, Family: "rca", Confirmed: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bus.PublishSync(context.Background(), events.OffersQuoted{OrderID: 2, Family: "casco", Dropped: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(refresher.reasons) != 1 || refresher.reasons[0] != "dropped:casco:2" {
		t.Fatalf("expected one refresh for the drop, got %v", refresher.reasons)
	}
}
