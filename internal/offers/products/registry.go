package products

import (
	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/ports"
	"insurance_portal_backend/internal/offers/pricing"
	"insurance_portal_backend/internal/offers/service"
	"insurance_portal_backend/platform/logger"
)

var (
	_ service.Product             = (*RCA)(nil)
	_ service.Product             = (*CASCO)(nil)
	_ service.Product             = (*PAD)(nil)
	_ service.Product             = (*House)(nil)
	_ service.Bundled             = (*House)(nil)
	_ service.Product             = (*Malpraxis)(nil)
	_ service.EligibilityScreened = (*Malpraxis)(nil)
	_ service.Product             = (*Garantii)(nil)
)

// Registry resolves the strategy of a product family.
type Registry struct {
	products map[domain.ProductFamily]service.Product
}

// NewRegistry builds every supported product strategy.
func NewRegistry(transport aggregator.Transport, catalog ports.CatalogReader, cfg *pricing.Config, log *logger.Logger) *Registry {
	all := []service.Product{
		NewRCA(transport, catalog, cfg),
		NewCASCO(transport, catalog),
		NewPAD(transport, catalog),
		NewHouse(transport, catalog, cfg, log),
		NewMalpraxis(transport, catalog),
		NewGarantii(transport, catalog),
	}
	products := make(map[domain.ProductFamily]service.Product, len(all))
	for _, product := range all {
		products[product.Family()] = product
	}
	return &Registry{products: products}
}

// Get returns the strategy for family.
func (r *Registry) Get(family domain.ProductFamily) (service.Product, bool) {
	product, ok := r.products[family]
	return product, ok
}
