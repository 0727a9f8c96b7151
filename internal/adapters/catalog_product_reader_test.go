package adapters

import (
	"context"
	"testing"

	catrepo "insurance_portal_backend/internal/catalog/repository"
	"insurance_portal_backend/internal/offers/domain"
)

type fakeCatalog struct {
	products []catrepo.Product
	families []string
}

func (f *fakeCatalog) Lookup(_ context.Context, id string) (catrepo.Product, bool) {
	for _, p := range f.products {
		if p.ID == id {
			return p, true
		}
	}
	return catrepo.Product{}, false
}

func (f *fakeCatalog) ByFamily(_ context.Context, family string) []catrepo.Product {
	f.families = append(f.families, family)
	return f.products
}

func TestCatalogProductReaderMapsFields(t *testing.T) {
	source := &fakeCatalog{products: []catrepo.Product{{ID: "omniasig-pad", Family: "pad", VendorName: "Omniasig", Name: "PAD", LogoURL: "logo.png", Active: true}}}
	reader := NewCatalogProductReader(source)

	product, ok := reader.Lookup(context.Background(), "omniasig-pad")
	if !ok || product.VendorName != "Omniasig" || product.LogoURL != "logo.png" {
		t.Fatalf("unexpected lookup result %+v (%v)", product, ok)
	}
	if _, ok := reader.Lookup(context.Background(), "missing"); ok {
		t.Fatal("expected unknown product to miss")
	}

	listed := reader.ByFamily(context.Background(), domain.FamilyPAD)
	if len(listed) != 1 || source.families[0] != "pad" {
		t.Fatalf("expected family to be passed through, got %v", source.families)
	}
}
