// Package ports defines the interfaces the offers module needs from other
// modules. Implementations live in internal/adapters.
package ports

import (
	"context"

	"insurance_portal_backend/internal/offers/domain"
)

// CatalogProduct holds the display fields of one insurer product.
type CatalogProduct struct {
	ID         string
	VendorName string
	Name       string
	LogoURL    string
}

// CatalogReader resolves insurer products from the locally cached catalog.
type CatalogReader interface {
	Lookup(ctx context.Context, productID string) (CatalogProduct, bool)
	ByFamily(ctx context.Context, family domain.ProductFamily) []CatalogProduct
}
