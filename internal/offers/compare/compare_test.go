package compare

import (
	"testing"

	"github.com/shopspring/decimal"

	"insurance_portal_backend/internal/offers/aggregate"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/pricing"
)

var (
	std6  = domain.VariantKey{DurationMonths: 6, Settlement: domain.SettlementStandard}
	std12 = domain.VariantKey{DurationMonths: 12, Settlement: domain.SettlementStandard}
	dir12 = domain.VariantKey{DurationMonths: 12, Settlement: domain.SettlementDirect}
)

func priced(vendor string, key domain.VariantKey, premium string) domain.Offer {
	offer := domain.Confirmed(1, vendor+"-"+key.String(), decimal.RequireFromString(premium), "RON")
	offer.VendorName = vendor
	k := key
	offer.Variant = &k
	return offer
}

func group(vendor string, offers ...domain.Offer) aggregate.VendorGroup {
	return aggregate.VendorGroup{VendorName: vendor, Offers: offers}
}

func TestMatchVariantIsExact(t *testing.T) {
	offers := []domain.Offer{priced("A", std12, "500")}

	if MatchVariant(offers, dir12) != nil {
		t.Fatal("expected 12m standard not to match 12m direct")
	}
	if got := MatchVariant(offers, std12); got == nil || !got.Premium.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected exact match, got %+v", got)
	}
	if MatchVariant(offers, std6) != nil {
		t.Fatal("expected empty slot for unsold duration")
	}
}

func TestMatchVariantIgnoresPlaceholders(t *testing.T) {
	k := std12
	placeholder := domain.Unavailable(domain.ProductRequestBody{ProductID: "A", Variant: &k}, domain.ReasonDropped, domain.DroppedMessage)
	if MatchVariant([]domain.Offer{placeholder}, std12) != nil {
		t.Fatal("expected placeholder not to fill a slot")
	}
}

func TestCheapestPerColumnIdempotentAndZeroIgnored(t *testing.T) {
	groups := []aggregate.VendorGroup{
		group("A", priced("A", std12, "520")),
		group("B", priced("B", std12, "480.50")),
	}

	first := CheapestPerColumn(groups, std12)
	second := CheapestPerColumn(groups, std12)
	if first == nil || second == nil || !first.Equal(*second) || !first.Equal(decimal.RequireFromString("480.50")) {
		t.Fatalf("expected 480.50 twice, got %v and %v", first, second)
	}

	withZero := append(groups, group("Z", priced("Z", std12, "0")))
	if got := CheapestPerColumn(withZero, std12); !got.Equal(*first) {
		t.Fatalf("expected zero premium not to change the result, got %s", got)
	}

	withCheaper := append(groups, group("C", priced("C", std12, "410")))
	if got := CheapestPerColumn(withCheaper, std12); !got.Equal(decimal.NewFromInt(410)) {
		t.Fatalf("expected cheaper vendor to win, got %s", got)
	}

	if CheapestPerColumn(groups, dir12) != nil {
		t.Fatal("expected nil for a column nobody quotes")
	}
}

func TestSortForTabUsesLastColumn(t *testing.T) {
	tab, _ := pricing.Default().Tab("long")
	groups := []aggregate.VendorGroup{
		group("NoLong", priced("NoLong", std6, "100")),
		group("Pricey", priced("Pricey", std6, "200"), priced("Pricey", std12, "700")),
		group("Cheap", priced("Cheap", std6, "300"), priced("Cheap", std12, "450")),
		group("Zero", priced("Zero", std12, "0")),
	}

	sorted := SortForTab(groups, tab)

	want := []string{"Cheap", "Pricey", "NoLong", "Zero"}
	for i, name := range want {
		if sorted[i].VendorName != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, sorted[i].VendorName)
		}
	}
	if groups[0].VendorName != "NoLong" {
		t.Fatal("expected input order to be left untouched")
	}
}

func TestBuildFlagsBestPricePerColumn(t *testing.T) {
	tab, _ := pricing.Default().Tab("long")
	groups := []aggregate.VendorGroup{
		group("A", priced("A", std6, "250"), priced("A", std12, "480")),
		group("B", priced("B", std6, "240"), priced("B", std12, "480")),
	}

	grid := Build(groups, tab)

	if len(grid.Columns) != 2 || !grid.Columns[0].Cheapest.Equal(decimal.NewFromInt(240)) {
		t.Fatalf("unexpected columns %+v", grid.Columns)
	}
	if len(grid.Rows) != 2 || grid.Rows[0].VendorName != "A" {
		t.Fatalf("expected stable order on a tie, got %+v", grid.Rows)
	}
	a, b := grid.Rows[0], grid.Rows[1]
	if a.Cells[0].Best || !b.Cells[0].Best {
		t.Fatal("expected only B to be best at 6 months")
	}
	if !a.Cells[1].Best || !b.Cells[1].Best {
		t.Fatal("expected both tied vendors to be best at 12 months")
	}
}
