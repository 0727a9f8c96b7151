package products

import (
	"context"
	"time"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/ports"
	"insurance_portal_backend/internal/offers/pricing"
)

// RCA quotes motor third-party liability for every pricing column: one body
// per catalog product and column, so the comparison grid can be filled.
type RCA struct {
	base
	columns []domain.VariantKey
}

// NewRCA creates the RCA strategy over the configured pricing columns.
func NewRCA(transport aggregator.Transport, catalog ports.CatalogReader, cfg *pricing.Config) *RCA {
	return &RCA{
		base:    base{family: domain.FamilyRCA, transport: transport, catalog: catalog, now: time.Now},
		columns: cfg.Columns(),
	}
}

// OrderDetails requires the vehicle and its owner's driving data.
func (r *RCA) OrderDetails(details map[string]any) (map[string]any, error) {
	if _, err := mapField(details, "vehicle"); err != nil {
		return nil, invalidDetail("vehicle")
	}
	if _, err := stringField(details, "vehicle.vin"); err != nil {
		if _, err := stringField(details, "vehicle.registrationNumber"); err != nil {
			return nil, invalidDetail("vehicle.vin")
		}
	}
	if _, err := stringField(details, "vehicle.category"); err != nil {
		return nil, invalidDetail("vehicle.category")
	}

	start, err := r.startDate(details)
	if err != nil {
		return nil, err
	}
	return copyDetails(details, start), nil
}

// FetchBodies crosses the catalog with the pricing columns.
func (r *RCA) FetchBodies(ctx context.Context, _ domain.Order, details map[string]any) ([]domain.ProductRequestBody, error) {
	start, err := r.startDate(details)
	if err != nil {
		return nil, err
	}
	products, err := r.catalogBodies(ctx, domain.FamilyRCA, start, 12, details)
	if err != nil {
		return nil, err
	}

	bodies := make([]domain.ProductRequestBody, 0, len(products)*len(r.columns))
	for _, product := range products {
		for _, column := range r.columns {
			variant := column
			body := product
			body.Variant = &variant
			body.EndDate = policyEnd(start, column.DurationMonths)
			bodies = append(bodies, body)
		}
	}
	return bodies, nil
}
