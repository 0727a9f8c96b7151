// Package compare maps vendor offers onto the (duration x settlement) grid
// and computes the best price per column.
package compare

import (
	"sort"

	"github.com/shopspring/decimal"

	"insurance_portal_backend/internal/offers/aggregate"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/pricing"
)

// MatchVariant returns the vendor's offer encoded for exactly key, or nil
// when the vendor does not sell that combination. Placeholders never fill a slot.
func MatchVariant(offers []domain.Offer, key domain.VariantKey) *domain.Offer {
	for i := range offers {
		offer := &offers[i]
		if offer.IsPlaceholder() || offer.Variant == nil {
			continue
		}
		if offer.Variant.Equal(key) {
			return offer
		}
	}
	return nil
}

// availablePrice returns the slot's price when it holds a real quote.
func availablePrice(offers []domain.Offer, key domain.VariantKey) (decimal.Decimal, bool) {
	offer := MatchVariant(offers, key)
	if offer == nil || !offer.IsAvailable() {
		return decimal.Decimal{}, false
	}
	return offer.Premium, true
}

// CheapestPerColumn returns the minimum strictly positive premium for key
// across vendors, or nil when no vendor has a real quote for it.
func CheapestPerColumn(groups []aggregate.VendorGroup, key domain.VariantKey) *decimal.Decimal {
	var best *decimal.Decimal
	for _, group := range groups {
		price, ok := availablePrice(group.Offers, key)
		if !ok {
			continue
		}
		if best == nil || price.LessThan(*best) {
			p := price
			best = &p
		}
	}
	return best
}

// SortForTab orders vendors by their price in the tab's last column,
// ascending. Vendors without a real quote there sort last. The sort is stable
// and the input slice is not modified.
func SortForTab(groups []aggregate.VendorGroup, tab pricing.Tab) []aggregate.VendorGroup {
	sorted := make([]aggregate.VendorGroup, len(groups))
	copy(sorted, groups)

	last, ok := tab.LastColumn()
	if !ok {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		pi, iok := availablePrice(sorted[i].Offers, last)
		pj, jok := availablePrice(sorted[j].Offers, last)
		switch {
		case iok && jok:
			return pi.LessThan(pj)
		case iok:
			return true
		default:
			return false
		}
	})
	return sorted
}

// Column is one grid column with its best price.
type Column struct {
	Key      domain.VariantKey
	Cheapest *decimal.Decimal
}

// Cell is one vendor/variant slot. Offer is nil for an empty slot.
type Cell struct {
	Key   domain.VariantKey
	Offer *domain.Offer
	Best  bool
}

// Row is one vendor in the grid.
type Row struct {
	VendorName string
	VendorLogo string
	Cells      []Cell
}

// Grid is the comparison table for one tab.
type Grid struct {
	Tab     pricing.Tab
	Columns []Column
	Rows    []Row
}

// Build computes the grid for a tab: rows sorted for the tab, each slot
// matched exactly, and the cheapest available slot per column flagged.
func Build(groups []aggregate.VendorGroup, tab pricing.Tab) Grid {
	grid := Grid{Tab: tab, Columns: make([]Column, 0, len(tab.Columns))}
	for _, key := range tab.Columns {
		grid.Columns = append(grid.Columns, Column{Key: key, Cheapest: CheapestPerColumn(groups, key)})
	}

	for _, group := range SortForTab(groups, tab) {
		row := Row{VendorName: group.VendorName, VendorLogo: group.VendorLogo, Cells: make([]Cell, 0, len(tab.Columns))}
		for _, column := range grid.Columns {
			cell := Cell{Key: column.Key, Offer: MatchVariant(group.Offers, column.Key)}
			if cell.Offer != nil && cell.Offer.IsAvailable() && column.Cheapest != nil {
				cell.Best = cell.Offer.Premium.Equal(*column.Cheapest)
			}
			row.Cells = append(row.Cells, cell)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}
