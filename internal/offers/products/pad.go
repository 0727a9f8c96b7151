package products

import (
	"context"
	"time"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/ports"
)

// PAD quotes the compulsory home policy on its own.
type PAD struct {
	base
}

func NewPAD(transport aggregator.Transport, catalog ports.CatalogReader) *PAD {
	return &PAD{base: base{family: domain.FamilyPAD, transport: transport, catalog: catalog, now: time.Now}}
}

func (p *PAD) OrderDetails(details map[string]any) (map[string]any, error) {
	if err := validateProperty(details); err != nil {
		return nil, err
	}
	start, err := p.startDate(details)
	if err != nil {
		return nil, err
	}
	return copyDetails(details, start), nil
}

func (p *PAD) FetchBodies(ctx context.Context, _ domain.Order, details map[string]any) ([]domain.ProductRequestBody, error) {
	start, err := p.startDate(details)
	if err != nil {
		return nil, err
	}
	return p.catalogBodies(ctx, domain.FamilyPAD, start, 12, details)
}

// validateProperty checks the property block shared by PAD and house cover.
func validateProperty(details map[string]any) error {
	if _, err := mapField(details, "property"); err != nil {
		return invalidDetail("property")
	}
	if _, err := stringField(details, "property.structure"); err != nil {
		return invalidDetail("property.structure")
	}
	area, err := numberField(details, "property.area")
	if err != nil || !area.IsPositive() {
		return invalidDetail("property.area")
	}
	if _, err := numberField(details, "property.constructionYear"); err != nil {
		return invalidDetail("property.constructionYear")
	}
	return nil
}
