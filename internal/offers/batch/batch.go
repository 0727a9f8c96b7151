// Package batch requests one offer per product body concurrently and accounts
// for every body in the result.
package batch

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"insurance_portal_backend/internal/aggregator/client"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/ports"
	"insurance_portal_backend/platform/logger"
	"insurance_portal_backend/platform/sanitize"
)

const maxErrorMessageRunes = 240

// Requester performs the product specific part of a batch.
type Requester interface {
	// FetchOffer requests the offer for one body. The backend may answer with
	// no offer for the body at all; that is reported as an empty slice.
	FetchOffer(ctx context.Context, order domain.Order, body domain.ProductRequestBody) ([]domain.Offer, error)
	// MapOfferError builds the placeholder for a failed request.
	MapOfferError(body domain.ProductRequestBody, err error) domain.Offer
}

// Result holds the outcome of a batch. Offers carries successes and error
// placeholders in body order; Dropped carries placeholders for bodies the
// backend neither quoted nor rejected.
type Result struct {
	Offers  []domain.Offer
	Dropped []domain.Offer
}

// All returns offers followed by dropped placeholders.
func (r Result) All() []domain.Offer {
	all := make([]domain.Offer, 0, len(r.Offers)+len(r.Dropped))
	all = append(all, r.Offers...)
	return append(all, r.Dropped...)
}

// Batch fans out offer requests.
type Batch struct {
	catalog ports.CatalogReader
	limit   int
	log     *logger.Logger
}

// New creates a batch runner. limit bounds in-flight requests; zero means unbounded.
func New(catalog ports.CatalogReader, limit int, log *logger.Logger) *Batch {
	return &Batch{catalog: catalog, limit: limit, log: log}
}

// RequestAll issues one request per body. Requests do not cancel each other:
// the group has no derived context and every goroutine returns nil after
// writing its own slot.
func (b *Batch) RequestAll(ctx context.Context, order domain.Order, bodies []domain.ProductRequestBody, requester Requester) Result {
	slots := make([][]domain.Offer, len(bodies))

	var g errgroup.Group
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}
	for i, body := range bodies {
		g.Go(func() error {
			slots[i] = b.fetch(ctx, order, body, requester)
			return nil
		})
	}
	_ = g.Wait()

	covered := make(map[string]struct{}, len(bodies))
	result := Result{Offers: make([]domain.Offer, 0, len(bodies))}
	for _, offers := range slots {
		for _, offer := range offers {
			covered[offer.Key()] = struct{}{}
			result.Offers = append(result.Offers, offer)
		}
	}

	for _, body := range bodies {
		key := body.Key()
		if _, ok := covered[key]; ok {
			continue
		}
		covered[key] = struct{}{}
		dropped := domain.Unavailable(body, domain.ReasonDropped, domain.DroppedMessage)
		b.backfill(ctx, &dropped)
		result.Dropped = append(result.Dropped, dropped)
	}

	log := b.log.WithContext(ctx)
	orderID := strconv.FormatInt(order.ID, 10)
	for _, offer := range result.All() {
		log.OfferOutcome(orderID, offer.Key(), string(offer.Status), string(offer.Reason))
	}
	if len(result.Dropped) > 0 {
		log.Warn("backend omitted products from its response", "order_id", order.ID, "dropped", len(result.Dropped))
	}

	return result
}

func (b *Batch) fetch(ctx context.Context, order domain.Order, body domain.ProductRequestBody, requester Requester) (offers []domain.Offer) {
	defer func() {
		// A panicking product must not take the other requests down with it.
		if r := recover(); r != nil {
			b.log.Error("offer request panicked", "product_id", body.ProductID, "panic", fmt.Sprint(r))
			offers = []domain.Offer{b.failure(ctx, body, fmt.Errorf("offer request panicked: %v", r), requester)}
		}
	}()

	fetched, err := requester.FetchOffer(ctx, order, body)
	if err != nil {
		return []domain.Offer{b.failure(ctx, body, err, requester)}
	}

	offers = make([]domain.Offer, 0, len(fetched))
	for _, offer := range fetched {
		if offer.ProductID == "" {
			offer.ProductID = body.ProductID
		}
		if offer.Variant == nil {
			offer.Variant = body.Variant
		}
		offer.MergeDisplay(body.VendorName, body.ProductName, "")
		b.backfill(ctx, &offer)
		offers = append(offers, offer)
	}
	return offers
}

// failure builds the placeholder at the failure site and pins it to the body.
func (b *Batch) failure(ctx context.Context, body domain.ProductRequestBody, err error, requester Requester) domain.Offer {
	placeholder := requester.MapOfferError(body, err)
	placeholder.Status = domain.StatusUnavailable
	placeholder.ID = 0
	if placeholder.Reason == domain.ReasonNone {
		placeholder.Reason = domain.ReasonError
	}
	placeholder.ProductID = body.ProductID
	placeholder.Variant = body.Variant
	placeholder.MergeDisplay(body.VendorName, body.ProductName, "")
	b.backfill(ctx, &placeholder)
	return placeholder
}

func (b *Batch) backfill(ctx context.Context, offer *domain.Offer) {
	if b.catalog == nil {
		return
	}
	if offer.VendorName != "" && offer.ProductName != "" && offer.VendorLogo != "" {
		return
	}
	if product, ok := b.catalog.Lookup(ctx, offer.ProductID); ok {
		offer.MergeDisplay(product.VendorName, product.Name, product.LogoURL)
	}
}

// ErrorPlaceholder is the default MapOfferError: the placeholder carries the
// caught error's message, with backend payloads reduced to their message text.
func ErrorPlaceholder(body domain.ProductRequestBody, err error) domain.Offer {
	return domain.Unavailable(body, domain.ReasonError, ErrorMessage(err))
}

// ErrorMessage extracts display text from a failed offer request.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := client.AsAPIError(err); ok {
		return sanitize.Truncate(apiErr.Message(), maxErrorMessageRunes)
	}
	return sanitize.Truncate(sanitize.Text(err.Error()), maxErrorMessageRunes)
}
