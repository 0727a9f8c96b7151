package service

import (
	"context"

	"insurance_portal_backend/internal/offers/batch"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/fallback"
)

// Product is the strategy a product wizard plugs into the shared pipeline.
type Product interface {
	batch.Requester

	Family() domain.ProductFamily
	// OrderDetails validates the wizard details and returns the payload sent
	// with order creation.
	OrderDetails(details map[string]any) (map[string]any, error)
	// FetchBodies builds one request body per candidate product.
	FetchBodies(ctx context.Context, order domain.Order, details map[string]any) ([]domain.ProductRequestBody, error)
}

// EligibilityScreened products run a pre-flight eligibility check.
type EligibilityScreened interface {
	RiskProfile(details map[string]any) map[string]any
}

// Bundled products quote a secondary rider next to the primary offers.
type Bundled interface {
	// AncillaryBody returns the rider's request body; false skips the rider.
	AncillaryBody(ctx context.Context, order domain.Order, details map[string]any) (domain.ProductRequestBody, bool)
	AncillaryChain() *fallback.Chain
	// AncillaryEstimate is the flat-rate fallback when the chain is exhausted.
	AncillaryEstimate(details map[string]any) (domain.Offer, bool)
}
