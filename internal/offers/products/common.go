// Package products holds one strategy per product family. Each strategy
// builds the request bodies and decodes the offers of its family; the shared
// pipeline in the service package does the rest.
package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/offers/batch"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/ports"
	"insurance_portal_backend/platform/apperr"
	"insurance_portal_backend/platform/sanitize"
)

const dateLayout = "2006-01-02"

// errNoQuote is returned when the backend answered for the product with an
// explicit error flag instead of a price.
type errNoQuote struct {
	message string
}

func (e *errNoQuote) Error() string {
	if e.message == "" {
		return "insurer returned no quote"
	}
	return e.message
}

type offerRequest struct {
	ProductID        string         `json:"productId"`
	StartDate        string         `json:"startDate"`
	EndDate          string         `json:"endDate"`
	DurationMonths   int            `json:"durationMonths,omitempty"`
	DirectSettlement bool           `json:"directSettlement,omitempty"`
	Details          map[string]any `json:"details,omitempty"`
}

type offerResponse struct {
	Offers []apiOffer `json:"offers"`
}

type apiInstallment struct {
	Number  int             `json:"number"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"dueDate"`
}

type apiOffer struct {
	ID               int64            `json:"id"`
	ProductID        string           `json:"productId"`
	ProductName      string           `json:"productName"`
	Premium          decimal.Decimal  `json:"premium"`
	Currency         string           `json:"currency"`
	Installments     []apiInstallment `json:"installments"`
	Coverage         map[string]any   `json:"coverage"`
	DurationMonths   int              `json:"durationMonths"`
	DirectSettlement *bool            `json:"directSettlement"`
	IsError          bool             `json:"isError"`
	ErrorMessage     string           `json:"errorMessage"`
	Vendor           struct {
		Name string `json:"name"`
		Logo string `json:"logo"`
	} `json:"vendor"`
}

// toDomain converts an entry answering a body priced for requested. An entry
// that states its duration but not its settlement mode is taken to answer
// the requested mode.
func (a apiOffer) toDomain(requested *domain.VariantKey) domain.Offer {
	offer := domain.Confirmed(a.ID, a.ProductID, a.Premium, strings.ToUpper(strings.TrimSpace(a.Currency)))
	offer.ProductName = a.ProductName
	offer.VendorName = a.Vendor.Name
	offer.VendorLogo = a.Vendor.Logo
	offer.Coverage = a.Coverage
	if offer.Currency == "" {
		offer.Currency = "RON"
	}
	for _, inst := range a.Installments {
		offer.Installments = append(offer.Installments, domain.Installment{Number: inst.Number, Amount: inst.Amount, DueDate: inst.DueDate})
	}
	if a.DurationMonths > 0 {
		settlement := domain.SettlementStandard
		switch {
		case a.DirectSettlement != nil && *a.DirectSettlement:
			settlement = domain.SettlementDirect
		case a.DirectSettlement == nil && requested != nil:
			settlement = requested.Settlement
		}
		offer.Variant = &domain.VariantKey{DurationMonths: a.DurationMonths, Settlement: settlement}
	}
	return offer
}

// base carries what every product strategy shares.
type base struct {
	family    domain.ProductFamily
	transport aggregator.Transport
	catalog   ports.CatalogReader
	now       func() time.Time
}

func (b *base) Family() domain.ProductFamily {
	return b.family
}

// MapOfferError keeps the caught error's text on the placeholder.
func (b *base) MapOfferError(body domain.ProductRequestBody, err error) domain.Offer {
	return batch.ErrorPlaceholder(body, err)
}

// FetchOffer posts one body to the comparator endpoint of the order.
func (b *base) FetchOffer(ctx context.Context, order domain.Order, body domain.ProductRequestBody) ([]domain.Offer, error) {
	return requestOffers(ctx, b.transport, fmt.Sprintf("/orders/%d/offers", order.ID), order, body)
}

// catalogBodies builds one body per active catalog product of the family.
func (b *base) catalogBodies(ctx context.Context, family domain.ProductFamily, start time.Time, months int, details map[string]any) ([]domain.ProductRequestBody, error) {
	products := b.catalog.ByFamily(ctx, family)
	if len(products) == 0 {
		return nil, apperr.Internal(fmt.Sprintf("no active %s products in catalog", family)).WithOp("products.catalogBodies")
	}

	bodies := make([]domain.ProductRequestBody, 0, len(products))
	for _, p := range products {
		bodies = append(bodies, domain.ProductRequestBody{
			ProductID:   p.ID,
			ProductName: p.Name,
			VendorName:  p.VendorName,
			StartDate:   start,
			EndDate:     policyEnd(start, months),
			Details:     details,
		})
	}
	return bodies, nil
}

func requestOffers(ctx context.Context, transport aggregator.Transport, path string, order domain.Order, body domain.ProductRequestBody) ([]domain.Offer, error) {
	req := offerRequest{
		ProductID: body.ProductID,
		StartDate: body.StartDate.Format(dateLayout),
		EndDate:   body.EndDate.Format(dateLayout),
		Details:   body.Details,
	}
	if body.Variant != nil {
		req.DurationMonths = body.Variant.DurationMonths
		req.DirectSettlement = body.Variant.Settlement == domain.SettlementDirect
	}

	var resp offerResponse
	if err := transport.Post(ctx, path, order.Hash, req, &resp); err != nil {
		return nil, err
	}
	return decodeOffers(resp.Offers, body)
}

// decodeOffers keeps the entries answering body. An answer made only of
// error entries is a failure; no entry at all means the backend dropped it.
func decodeOffers(entries []apiOffer, body domain.ProductRequestBody) ([]domain.Offer, error) {
	offers := make([]domain.Offer, 0, len(entries))
	var lastError string
	errored := false

	for _, entry := range entries {
		if entry.ProductID != "" && entry.ProductID != body.ProductID {
			continue
		}
		if entry.IsError {
			errored = true
			lastError = sanitize.Text(entry.ErrorMessage)
			continue
		}
		offer := entry.toDomain(body.Variant)
		if offer.ProductID == "" {
			offer.ProductID = body.ProductID
		}
		if body.Variant != nil && offer.Variant != nil && !offer.Variant.Equal(*body.Variant) {
			continue
		}
		offers = append(offers, offer)
	}

	if len(offers) == 0 && errored {
		return nil, &errNoQuote{message: lastError}
	}
	return offers, nil
}

func policyEnd(start time.Time, months int) time.Time {
	return start.AddDate(0, months, -1)
}

// Detail accessors over the wizard payload. The form layer validates the
// values; these only check presence and shape.

var errMissing = errors.New("missing")

func field(details map[string]any, path string) (any, error) {
	var current any = details
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, errMissing
		}
		current, ok = m[part]
		if !ok || current == nil {
			return nil, errMissing
		}
	}
	return current, nil
}

func stringField(details map[string]any, path string) (string, error) {
	value, err := field(details, path)
	if err != nil {
		return "", err
	}
	text, ok := value.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return "", errMissing
	}
	return strings.TrimSpace(text), nil
}

func numberField(details map[string]any, path string) (decimal.Decimal, error) {
	value, err := field(details, path)
	if err != nil {
		return decimal.Decimal{}, err
	}
	switch typed := value.(type) {
	case float64:
		return decimal.NewFromFloat(typed), nil
	case int:
		return decimal.NewFromInt(int64(typed)), nil
	case int64:
		return decimal.NewFromInt(typed), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(typed))
	default:
		return decimal.Decimal{}, errMissing
	}
}

func dateField(details map[string]any, path string) (time.Time, error) {
	text, err := stringField(details, path)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(dateLayout, text)
}

func mapField(details map[string]any, path string) (map[string]any, error) {
	value, err := field(details, path)
	if err != nil {
		return nil, err
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, errMissing
	}
	return m, nil
}

func invalidDetail(path string) error {
	return apperr.Validation(fmt.Sprintf("invalid or missing %s", path)).
		WithDetails(map[string]string{"field": path})
}

// startDate reads details.startDate, defaulting to tomorrow when absent.
func (b *base) startDate(details map[string]any) (time.Time, error) {
	if _, err := field(details, "startDate"); errors.Is(err, errMissing) {
		now := b.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC), nil
	}
	start, err := dateField(details, "startDate")
	if err != nil {
		return time.Time{}, invalidDetail("startDate")
	}
	return start, nil
}

// copyDetails returns a shallow copy with the normalized start date.
func copyDetails(details map[string]any, start time.Time) map[string]any {
	out := make(map[string]any, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out["startDate"] = start.Format(dateLayout)
	return out
}
