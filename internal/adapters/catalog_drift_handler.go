package adapters

import (
	"context"
	"strconv"

	"insurance_portal_backend/internal/events"
	"insurance_portal_backend/platform/logger"
)

// refreshRequester is the part of the scheduler client this handler needs.
type refreshRequester interface {
	EnqueueCatalogRefresh(ctx context.Context, reason string) error
}

// CatalogDriftHandler requests a catalog refresh when the backend silently
// dropped products we asked for, which usually means our catalog is stale.
type CatalogDriftHandler struct {
	scheduler refreshRequester
	log       *logger.Logger
}

func NewCatalogDriftHandler(scheduler refreshRequester, log *logger.Logger) *CatalogDriftHandler {
	return &CatalogDriftHandler{scheduler: scheduler, log: log}
}

// Register subscribes the handler on bus.
func (h *CatalogDriftHandler) Register(bus events.Bus) {
	bus.Subscribe(events.OffersQuoted{}.EventName(), h)
}

func (h *CatalogDriftHandler) Handle(ctx context.Context, event events.Event) error {
	quoted, ok := event.(events.OffersQuoted)
	if !ok || quoted.Dropped == 0 {
		return nil
	}
	h.log.WithContext(ctx).Info("backend dropped catalog products, requesting refresh",
		"order_id", quoted.OrderID, "family", quoted.Family, "dropped", quoted.Dropped)
	return h.scheduler.EnqueueCatalogRefresh(ctx, "dropped:"+quoted.Family+":"+strconv.FormatInt(quoted.OrderID, 10))
}

var _ events.Handler = (*CatalogDriftHandler)(nil)
