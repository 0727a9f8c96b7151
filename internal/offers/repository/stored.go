package repository

import (
	"github.com/shopspring/decimal"

	"insurance_portal_backend/internal/offers/domain"
)

// storedOffer is the JSONB payload of a quote_offers row.
type storedOffer struct {
	ID           int64                `json:"id"`
	ProductID    string               `json:"productId"`
	ProductName  string               `json:"productName,omitempty"`
	VendorName   string               `json:"vendorName,omitempty"`
	VendorLogo   string               `json:"vendorLogo,omitempty"`
	Premium      decimal.Decimal      `json:"premium"`
	Currency     string               `json:"currency,omitempty"`
	Installments []domain.Installment `json:"installments,omitempty"`
	Coverage     map[string]any       `json:"coverage,omitempty"`
	Variant      *domain.VariantKey   `json:"variant,omitempty"`
	Status       domain.Status        `json:"status"`
	Reason       domain.Reason        `json:"reason,omitempty"`
	Message      string               `json:"message,omitempty"`
}

func toStored(o domain.Offer) storedOffer {
	return storedOffer{
		ID:           o.ID,
		ProductID:    o.ProductID,
		ProductName:  o.ProductName,
		VendorName:   o.VendorName,
		VendorLogo:   o.VendorLogo,
		Premium:      o.Premium,
		Currency:     o.Currency,
		Installments: o.Installments,
		Coverage:     o.Coverage,
		Variant:      o.Variant,
		Status:       o.Status,
		Reason:       o.Reason,
		Message:      o.Message,
	}
}

func (s storedOffer) toDomain() domain.Offer {
	return domain.Offer{
		ID:           s.ID,
		ProductID:    s.ProductID,
		ProductName:  s.ProductName,
		VendorName:   s.VendorName,
		VendorLogo:   s.VendorLogo,
		Premium:      s.Premium,
		Currency:     s.Currency,
		Installments: s.Installments,
		Coverage:     s.Coverage,
		Variant:      s.Variant,
		Status:       s.Status,
		Reason:       s.Reason,
		Message:      s.Message,
	}
}
