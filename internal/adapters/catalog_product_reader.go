package adapters

import (
	"context"

	catrepo "insurance_portal_backend/internal/catalog/repository"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/ports"
)

// catalogSource is the part of the catalog service the offers module reads.
type catalogSource interface {
	Lookup(ctx context.Context, id string) (catrepo.Product, bool)
	ByFamily(ctx context.Context, family string) []catrepo.Product
}

// CatalogProductReader adapts the catalog service for the offers domain,
// satisfying ports.CatalogReader.
type CatalogProductReader struct {
	catalog catalogSource
}

// NewCatalogProductReader creates a new catalog reader adapter.
func NewCatalogProductReader(catalog catalogSource) *CatalogProductReader {
	return &CatalogProductReader{catalog: catalog}
}

// Lookup returns display fields for one product. Inactive products still
// resolve so that offers quoted for them keep their vendor name.
func (a *CatalogProductReader) Lookup(ctx context.Context, productID string) (ports.CatalogProduct, bool) {
	product, ok := a.catalog.Lookup(ctx, productID)
	if !ok {
		return ports.CatalogProduct{}, false
	}
	return toCatalogProduct(product), true
}

// ByFamily lists the active products of a family.
func (a *CatalogProductReader) ByFamily(ctx context.Context, family domain.ProductFamily) []ports.CatalogProduct {
	products := a.catalog.ByFamily(ctx, string(family))
	result := make([]ports.CatalogProduct, 0, len(products))
	for _, p := range products {
		result = append(result, toCatalogProduct(p))
	}
	return result
}

func toCatalogProduct(p catrepo.Product) ports.CatalogProduct {
	return ports.CatalogProduct{
		ID:         p.ID,
		VendorName: p.VendorName,
		Name:       p.Name,
		LogoURL:    p.LogoURL,
	}
}

// Compile-time check that CatalogProductReader implements ports.CatalogReader
var _ ports.CatalogReader = (*CatalogProductReader)(nil)
