// Package aggregate merges batch results into a displayable offer set and
// groups it by vendor.
package aggregate

import (
	"sort"
	"strings"

	"insurance_portal_backend/internal/offers/domain"
)

// Merge concatenates the sources in order. Real offers are always kept.
// Placeholders are deduplicated on first occurrence: one per vendor name and
// one per product id, so a vendor never shows two unavailable cards and an
// ineligible product later detected as dropped appears once.
func Merge(primary, rejections, dropped []domain.Offer) []domain.Offer {
	merged := make([]domain.Offer, 0, len(primary)+len(rejections)+len(dropped))
	seen := make(map[string]struct{})

	for _, source := range [][]domain.Offer{primary, rejections, dropped} {
		for _, offer := range source {
			if !offer.IsPlaceholder() {
				merged = append(merged, offer)
				continue
			}

			keys := dedupKeys(offer)
			if anySeen(seen, keys) {
				continue
			}
			for _, key := range keys {
				seen[key] = struct{}{}
			}
			merged = append(merged, offer)
		}
	}
	return merged
}

func dedupKeys(offer domain.Offer) []string {
	keys := []string{"product:" + offer.ProductID}
	if vendor := normalizeVendor(offer.VendorName); vendor != "" {
		keys = append(keys, "vendor:"+vendor)
	}
	return keys
}

func anySeen(seen map[string]struct{}, keys []string) bool {
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			return true
		}
	}
	return false
}

func normalizeVendor(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// VendorGroup is the set of offers shown under one vendor.
type VendorGroup struct {
	VendorName string
	VendorLogo string
	Offers     []domain.Offer
}

// HasLivePrice reports whether any offer in the group is purchasable.
func (g VendorGroup) HasLivePrice() bool {
	for _, offer := range g.Offers {
		if offer.IsAvailable() {
			return true
		}
	}
	return false
}

// Cheapest returns the lowest available offer of the group.
func (g VendorGroup) Cheapest() *domain.Offer {
	var best *domain.Offer
	for i := range g.Offers {
		offer := &g.Offers[i]
		if !offer.IsAvailable() {
			continue
		}
		if best == nil || offer.Premium.LessThan(best.Premium) {
			best = offer
		}
	}
	return best
}

// GroupByVendor partitions offers by vendor name in arrival order, then moves
// vendors with a live price above vendors without one. Ties keep arrival order.
// Offers without a vendor name form a group per product.
func GroupByVendor(offers []domain.Offer) []VendorGroup {
	groups := make([]VendorGroup, 0)
	index := make(map[string]int)

	for _, offer := range offers {
		key := "vendor:" + normalizeVendor(offer.VendorName)
		if normalizeVendor(offer.VendorName) == "" {
			key = "product:" + offer.ProductID
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, VendorGroup{VendorName: offer.VendorName})
		}
		if groups[i].VendorLogo == "" {
			groups[i].VendorLogo = offer.VendorLogo
		}
		groups[i].Offers = append(groups[i].Offers, offer)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].HasLivePrice() && !groups[j].HasLivePrice()
	})
	return groups
}
