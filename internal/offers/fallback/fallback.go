// Package fallback resolves a bundled rider through an ordered list of
// alternative request strategies.
package fallback

import (
	"context"

	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/platform/logger"
)

// Strategy is one way of requesting the rider's offer.
type Strategy struct {
	Name    string
	Request func(ctx context.Context, order domain.Order, body domain.ProductRequestBody) (domain.Offer, error)
}

// Chain tries strategies one at a time, in order.
type Chain struct {
	strategies []Strategy
	log        *logger.Logger
}

// NewChain creates a chain with strategies in priority order.
func NewChain(log *logger.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, log: log}
}

// Valid reports whether a strategy produced a usable backend offer.
func Valid(offer domain.Offer) bool {
	return offer.ID > 0 && offer.Premium.IsPositive() && offer.Status != domain.StatusUnavailable
}

// Resolve returns the first valid offer, or nil once every strategy failed.
// Strategies run sequentially: each is more specific than the previous one
// and the downstream endpoints do not tolerate fan-out.
func (c *Chain) Resolve(ctx context.Context, order domain.Order, body domain.ProductRequestBody) *domain.Offer {
	log := c.log.WithContext(ctx)

	for _, strategy := range c.strategies {
		offer, err := strategy.Request(ctx, order, body)
		if err != nil {
			log.Debug("fallback strategy failed", "strategy", strategy.Name, "product_id", body.ProductID, "error", err)
			continue
		}
		if !Valid(offer) {
			log.Debug("fallback strategy returned no valid offer", "strategy", strategy.Name, "product_id", body.ProductID)
			continue
		}

		if offer.ProductID == "" {
			offer.ProductID = body.ProductID
		}
		offer.Status = domain.StatusConfirmed
		log.Debug("fallback strategy resolved offer", "strategy", strategy.Name, "product_id", offer.ProductID)
		return &offer
	}

	log.Info("fallback chain exhausted", "product_id", body.ProductID, "strategies", len(c.strategies))
	return nil
}
