package products

import (
	"context"
	"time"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/ports"
)

const (
	defaultGuaranteeMonths = 12
	maxGuaranteeMonths     = 60
)

// Garantii quotes surety bonds issued in favour of a beneficiary company.
type Garantii struct {
	base
}

func NewGarantii(transport aggregator.Transport, catalog ports.CatalogReader) *Garantii {
	return &Garantii{base: base{family: domain.FamilyGarantii, transport: transport, catalog: catalog, now: time.Now}}
}

func (g *Garantii) OrderDetails(details map[string]any) (map[string]any, error) {
	if _, err := stringField(details, "guaranteeType"); err != nil {
		return nil, invalidDetail("guaranteeType")
	}
	value, err := numberField(details, "contractValue")
	if err != nil || !value.IsPositive() {
		return nil, invalidDetail("contractValue")
	}
	if _, err := stringField(details, "beneficiary.cui"); err != nil {
		return nil, invalidDetail("beneficiary.cui")
	}
	if _, err := g.months(details); err != nil {
		return nil, err
	}
	start, err := g.startDate(details)
	if err != nil {
		return nil, err
	}
	return copyDetails(details, start), nil
}

func (g *Garantii) FetchBodies(ctx context.Context, _ domain.Order, details map[string]any) ([]domain.ProductRequestBody, error) {
	start, err := g.startDate(details)
	if err != nil {
		return nil, err
	}
	months, err := g.months(details)
	if err != nil {
		return nil, err
	}
	return g.catalogBodies(ctx, domain.FamilyGarantii, start, months, details)
}

func (g *Garantii) months(details map[string]any) (int, error) {
	if _, err := field(details, "durationMonths"); err != nil {
		return defaultGuaranteeMonths, nil
	}
	value, err := numberField(details, "durationMonths")
	if err != nil || !value.IsInteger() {
		return 0, invalidDetail("durationMonths")
	}
	months := int(value.IntPart())
	if months < 1 || months > maxGuaranteeMonths {
		return 0, invalidDetail("durationMonths")
	}
	return months, nil
}
