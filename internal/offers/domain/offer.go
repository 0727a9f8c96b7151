// Package domain defines the types shared by every stage of the offer pipeline:
// applicants, quoting sessions, per-product request bodies and offers.
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Status is the tagged state of an offer.
type Status string

const (
	// StatusConfirmed is a price quoted by the insurer backend.
	StatusConfirmed Status = "confirmed"
	// StatusEstimated is a locally computed indicative price, never backend-confirmed.
	StatusEstimated Status = "estimated"
	// StatusUnavailable is a placeholder standing in for a product with no usable quote.
	StatusUnavailable Status = "unavailable"
)

// Reason explains why an offer is unavailable.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonError      Reason = "error"
	ReasonIneligible Reason = "ineligible"
	ReasonDropped    Reason = "dropped"
)

// DroppedMessage is shown for products the backend silently left out of its response.
const DroppedMessage = "Oferta nu este disponibilă pentru această configurație"

// Installment is one scheduled payment of a premium.
type Installment struct {
	Number  int             `json:"number"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"dueDate,omitempty"`
}

// Offer is a priced quote for one insurer product, or a placeholder for its absence.
type Offer struct {
	// ID is the backend offer id; zero unless Status is confirmed.
	ID           int64
	ProductID    string
	ProductName  string
	VendorName   string
	VendorLogo   string
	Premium      decimal.Decimal
	Currency     string
	Installments []Installment
	Coverage     map[string]any
	Variant      *VariantKey
	Status       Status
	Reason       Reason
	Message      string
}

// Confirmed builds a backend-priced offer.
func Confirmed(id int64, productID string, premium decimal.Decimal, currency string) Offer {
	return Offer{ID: id, ProductID: productID, Premium: premium, Currency: currency, Status: StatusConfirmed}
}

// Estimated builds an indicative, locally computed offer.
func Estimated(productID string, premium decimal.Decimal, currency, message string) Offer {
	return Offer{ProductID: productID, Premium: premium, Currency: currency, Status: StatusEstimated, Message: message}
}

// Unavailable builds a placeholder for the product described by body.
func Unavailable(body ProductRequestBody, reason Reason, message string) Offer {
	return Offer{
		ProductID:   body.ProductID,
		ProductName: body.ProductName,
		VendorName:  body.VendorName,
		Variant:     body.Variant,
		Status:      StatusUnavailable,
		Reason:      reason,
		Message:     message,
	}
}

// IsPlaceholder reports whether the offer stands in for a missing quote.
func (o Offer) IsPlaceholder() bool {
	return o.Status == StatusUnavailable
}

// IsError mirrors the legacy isError flag of the wire format.
func (o Offer) IsError() bool {
	return o.IsPlaceholder()
}

// IsAvailable reports a real, purchasable price: confirmed and strictly positive.
// A zero premium means "no real quote".
func (o Offer) IsAvailable() bool {
	return o.Status == StatusConfirmed && o.Premium.IsPositive()
}

// Key identifies the request body this offer answers.
func (o Offer) Key() string {
	return bodyKey(o.ProductID, o.Variant)
}

// MergeDisplay fills empty display fields from a catalog entry.
func (o *Offer) MergeDisplay(vendorName, productName, logo string) {
	if strings.TrimSpace(o.VendorName) == "" {
		o.VendorName = vendorName
	}
	if strings.TrimSpace(o.ProductName) == "" {
		o.ProductName = productName
	}
	if o.VendorLogo == "" {
		o.VendorLogo = logo
	}
}

// TotalPremium adds a bundled ancillary premium to a primary one.
// The ancillary counts when it is confirmed or estimated with a positive premium.
func TotalPremium(primary Offer, ancillary *Offer) decimal.Decimal {
	total := primary.Premium
	if ancillary != nil && ancillary.Status != StatusUnavailable && ancillary.Premium.IsPositive() {
		total = total.Add(ancillary.Premium)
	}
	return total
}

func bodyKey(productID string, variant *VariantKey) string {
	if variant == nil {
		return productID
	}
	return fmt.Sprintf("%s@%s", productID, variant.String())
}
