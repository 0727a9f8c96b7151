package products

import (
	"context"
	"time"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/ports"
)

// Malpraxis quotes professional liability for medical staff. Insurers
// screen the risk profile before pricing.
type Malpraxis struct {
	base
}

func NewMalpraxis(transport aggregator.Transport, catalog ports.CatalogReader) *Malpraxis {
	return &Malpraxis{base: base{family: domain.FamilyMalpraxis, transport: transport, catalog: catalog, now: time.Now}}
}

func (m *Malpraxis) OrderDetails(details map[string]any) (map[string]any, error) {
	if _, err := stringField(details, "profession"); err != nil {
		return nil, invalidDetail("profession")
	}
	years, err := numberField(details, "experienceYears")
	if err != nil || years.IsNegative() {
		return nil, invalidDetail("experienceYears")
	}
	limit, err := numberField(details, "liabilityLimit")
	if err != nil || !limit.IsPositive() {
		return nil, invalidDetail("liabilityLimit")
	}
	start, err := m.startDate(details)
	if err != nil {
		return nil, err
	}
	return copyDetails(details, start), nil
}

func (m *Malpraxis) FetchBodies(ctx context.Context, _ domain.Order, details map[string]any) ([]domain.ProductRequestBody, error) {
	start, err := m.startDate(details)
	if err != nil {
		return nil, err
	}
	return m.catalogBodies(ctx, domain.FamilyMalpraxis, start, 12, details)
}

// RiskProfile is what insurers screen on: profession, seniority and claims.
func (m *Malpraxis) RiskProfile(details map[string]any) map[string]any {
	profile := map[string]any{}
	if profession, err := stringField(details, "profession"); err == nil {
		profile["profession"] = profession
	}
	if years, err := numberField(details, "experienceYears"); err == nil {
		profile["experienceYears"] = years.IntPart()
	}
	claims, err := numberField(details, "claimsLastFiveYears")
	if err != nil {
		profile["claimsLastFiveYears"] = 0
	} else {
		profile["claimsLastFiveYears"] = claims.IntPart()
	}
	return profile
}
