package products

import (
	"context"
	"fmt"
	"time"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/fallback"
	"insurance_portal_backend/internal/offers/ports"
	"insurance_portal_backend/internal/offers/pricing"
	"insurance_portal_backend/platform/logger"
)

// House quotes optional home cover and bundles the compulsory PAD rider.
type House struct {
	base
	estimates pricing.FlatRates
	chain     *fallback.Chain
}

type dedicatedResponse struct {
	Offer *apiOffer `json:"offer"`
}

// NewHouse creates the house strategy. The rider is resolved through the
// versioned comparator, then the plain comparator, then the dedicated PAD
// endpoint, before falling back to the flat-rate estimate.
func NewHouse(transport aggregator.Transport, catalog ports.CatalogReader, cfg *pricing.Config, log *logger.Logger) *House {
	h := &House{
		base:      base{family: domain.FamilyHouse, transport: transport, catalog: catalog, now: time.Now},
		estimates: cfg.PADEstimate,
	}
	h.chain = fallback.NewChain(log,
		fallback.Strategy{Name: "comparator-v2", Request: h.viaComparator("/v2/orders/%d/offers")},
		fallback.Strategy{Name: "comparator", Request: h.viaComparator("/orders/%d/offers")},
		fallback.Strategy{Name: "dedicated", Request: h.viaDedicated},
	)
	return h
}

func (h *House) OrderDetails(details map[string]any) (map[string]any, error) {
	if err := validateProperty(details); err != nil {
		return nil, err
	}
	value, err := numberField(details, "property.insuredValue")
	if err != nil || !value.IsPositive() {
		return nil, invalidDetail("property.insuredValue")
	}
	start, err := h.startDate(details)
	if err != nil {
		return nil, err
	}
	return copyDetails(details, start), nil
}

func (h *House) FetchBodies(ctx context.Context, _ domain.Order, details map[string]any) ([]domain.ProductRequestBody, error) {
	start, err := h.startDate(details)
	if err != nil {
		return nil, err
	}
	return h.catalogBodies(ctx, domain.FamilyHouse, start, 12, details)
}

// AncillaryBody picks the first active PAD product. The rider is skipped
// when the applicant already holds a PAD policy.
func (h *House) AncillaryBody(ctx context.Context, _ domain.Order, details map[string]any) (domain.ProductRequestBody, bool) {
	if hasPAD, ok := details["hasPad"].(bool); ok && hasPAD {
		return domain.ProductRequestBody{}, false
	}
	products := h.catalog.ByFamily(ctx, domain.FamilyPAD)
	if len(products) == 0 {
		return domain.ProductRequestBody{}, false
	}
	start, err := h.startDate(details)
	if err != nil {
		return domain.ProductRequestBody{}, false
	}

	rider := products[0]
	return domain.ProductRequestBody{
		ProductID:   rider.ID,
		ProductName: rider.Name,
		VendorName:  rider.VendorName,
		StartDate:   start,
		EndDate:     policyEnd(start, 12),
		Details:     details,
	}, true
}

func (h *House) AncillaryChain() *fallback.Chain {
	return h.chain
}

// AncillaryEstimate prices the rider from the building's structure class.
func (h *House) AncillaryEstimate(details map[string]any) (domain.Offer, bool) {
	structure, _ := stringField(details, "property.structure")
	return h.estimates.Estimate("", pricing.ClassifyStructure(structure))
}

func (h *House) viaComparator(pathFormat string) func(context.Context, domain.Order, domain.ProductRequestBody) (domain.Offer, error) {
	return func(ctx context.Context, order domain.Order, body domain.ProductRequestBody) (domain.Offer, error) {
		offers, err := requestOffers(ctx, h.transport, fmt.Sprintf(pathFormat, order.ID), order, body)
		if err != nil {
			return domain.Offer{}, err
		}
		if len(offers) == 0 {
			return domain.Offer{}, &errNoQuote{}
		}
		return offers[0], nil
	}
}

func (h *House) viaDedicated(ctx context.Context, order domain.Order, body domain.ProductRequestBody) (domain.Offer, error) {
	req := offerRequest{
		ProductID: body.ProductID,
		StartDate: body.StartDate.Format(dateLayout),
		EndDate:   body.EndDate.Format(dateLayout),
		Details:   body.Details,
	}
	var resp dedicatedResponse
	if err := h.transport.Post(ctx, fmt.Sprintf("/orders/%d/pad", order.ID), order.Hash, req, &resp); err != nil {
		return domain.Offer{}, err
	}
	if resp.Offer == nil || resp.Offer.IsError {
		return domain.Offer{}, &errNoQuote{}
	}
	offer := resp.Offer.toDomain(body.Variant)
	if offer.ProductID == "" {
		offer.ProductID = body.ProductID
	}
	return offer, nil
}
