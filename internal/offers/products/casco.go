package products

import (
	"context"
	"time"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/ports"
)

// CASCO quotes comprehensive motor cover for a one year term.
type CASCO struct {
	base
}

func NewCASCO(transport aggregator.Transport, catalog ports.CatalogReader) *CASCO {
	return &CASCO{base: base{family: domain.FamilyCASCO, transport: transport, catalog: catalog, now: time.Now}}
}

func (c *CASCO) OrderDetails(details map[string]any) (map[string]any, error) {
	if _, err := stringField(details, "vehicle.vin"); err != nil {
		return nil, invalidDetail("vehicle.vin")
	}
	value, err := numberField(details, "vehicle.insuredValue")
	if err != nil || !value.IsPositive() {
		return nil, invalidDetail("vehicle.insuredValue")
	}

	start, err := c.startDate(details)
	if err != nil {
		return nil, err
	}
	return copyDetails(details, start), nil
}

func (c *CASCO) FetchBodies(ctx context.Context, _ domain.Order, details map[string]any) ([]domain.ProductRequestBody, error) {
	start, err := c.startDate(details)
	if err != nil {
		return nil, err
	}
	return c.catalogBodies(ctx, domain.FamilyCASCO, start, 12, details)
}
