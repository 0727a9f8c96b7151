package transport

import (
	"strings"

	"insurance_portal_backend/internal/offers/aggregate"
	"insurance_portal_backend/internal/offers/compare"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/pricing"
	"insurance_portal_backend/internal/offers/service"
	"insurance_portal_backend/platform/sanitize"
)

// vinKeys are detail fields masked before they are echoed back.
var vinKeys = map[string]struct{}{"vin": {}, "chassisNumber": {}}

// ToApplicant maps the request to the domain applicant.
func (r ApplicantRequest) ToApplicant() domain.Applicant {
	return domain.Applicant{
		LegalType:   domain.LegalType(r.LegalType),
		Identifier:  strings.ToUpper(strings.TrimSpace(r.Identifier)),
		FirstName:   strings.TrimSpace(r.FirstName),
		LastName:    strings.TrimSpace(r.LastName),
		CompanyName: strings.TrimSpace(r.CompanyName),
		Email:       strings.TrimSpace(r.Email),
		Phone:       strings.TrimSpace(r.Phone),
		Address: domain.Address{
			CountyID:   r.Address.CountyID,
			CityID:     r.Address.CityID,
			Street:     strings.TrimSpace(r.Address.Street),
			Number:     strings.TrimSpace(r.Address.Number),
			Building:   strings.TrimSpace(r.Address.Building),
			Apartment:  strings.TrimSpace(r.Address.Apartment),
			PostalCode: strings.TrimSpace(r.Address.PostalCode),
		},
	}
}

func ToVariant(key domain.VariantKey) VariantResponse {
	return VariantResponse{DurationMonths: key.DurationMonths, Settlement: string(key.Settlement)}
}

// ToOffer maps an offer. Ancillary is the bundled rider, if any; it only
// contributes to the total of available offers.
func ToOffer(offer domain.Offer, ancillary *domain.Offer) OfferResponse {
	resp := OfferResponse{
		ID:          offer.ID,
		Key:         offer.Key(),
		ProductID:   offer.ProductID,
		ProductName: offer.ProductName,
		VendorName:  offer.VendorName,
		VendorLogo:  offer.VendorLogo,
		Status:      string(offer.Status),
		Reason:      string(offer.Reason),
		IsError:     offer.IsError(),
		Message:     offer.Message,
		Premium:     offer.Premium,
		Currency:    offer.Currency,
		Coverage:    MaskDetails(offer.Coverage),
	}
	for _, inst := range offer.Installments {
		resp.Installments = append(resp.Installments, InstallmentResponse{Number: inst.Number, Amount: inst.Amount, DueDate: inst.DueDate})
	}
	if offer.Variant != nil {
		v := ToVariant(*offer.Variant)
		resp.Variant = &v
	}
	if ancillary != nil && offer.IsAvailable() {
		total := domain.TotalPremium(offer, ancillary)
		resp.TotalPremium = &total
	}
	return resp
}

func ToVendorGroups(groups []aggregate.VendorGroup, ancillary *domain.Offer) []VendorGroupResponse {
	out := make([]VendorGroupResponse, 0, len(groups))
	for _, group := range groups {
		offers := make([]OfferResponse, 0, len(group.Offers))
		for _, offer := range group.Offers {
			offers = append(offers, ToOffer(offer, ancillary))
		}
		out = append(out, VendorGroupResponse{
			VendorName:   group.VendorName,
			VendorLogo:   group.VendorLogo,
			HasLivePrice: group.HasLivePrice(),
			Offers:       offers,
		})
	}
	return out
}

// ToOffersResponse maps a quoting result. The applicant identifier is masked.
func ToOffersResponse(result *service.Result) OffersResponse {
	resp := OffersResponse{
		Order: OrderResponse{
			ID:              result.Order.ID,
			Hash:            result.Order.Hash,
			Family:          string(result.Order.Family),
			ApplicantName:   result.Order.Applicant.DisplayName(),
			ApplicantMasked: sanitize.MaskIdentifier(result.Order.Applicant.Identifier),
		},
		Vendors: ToVendorGroups(result.Vendors, result.Ancillary),
		Total:   len(result.Offers),
	}
	if result.Ancillary != nil {
		rider := ToOffer(*result.Ancillary, nil)
		resp.Ancillary = &rider
		resp.AncillaryEstimated = result.Ancillary.Status == domain.StatusEstimated
	}
	return resp
}

func ToGridResponse(grid *compare.Grid) GridResponse {
	resp := GridResponse{
		Tab:     grid.Tab.ID,
		Label:   grid.Tab.Label,
		Columns: make([]GridColumnResponse, 0, len(grid.Columns)),
		Rows:    make([]GridRowResponse, 0, len(grid.Rows)),
	}
	for _, column := range grid.Columns {
		resp.Columns = append(resp.Columns, GridColumnResponse{Variant: ToVariant(column.Key), Cheapest: column.Cheapest})
	}
	for _, row := range grid.Rows {
		cells := make([]GridCellResponse, 0, len(row.Cells))
		for _, cell := range row.Cells {
			item := GridCellResponse{Variant: ToVariant(cell.Key), Best: cell.Best}
			if cell.Offer != nil {
				offer := ToOffer(*cell.Offer, nil)
				item.Offer = &offer
			}
			cells = append(cells, item)
		}
		resp.Rows = append(resp.Rows, GridRowResponse{VendorName: row.VendorName, VendorLogo: row.VendorLogo, Cells: cells})
	}
	return resp
}

func ToTabs(tabs []pricing.Tab) []TabResponse {
	out := make([]TabResponse, 0, len(tabs))
	for _, tab := range tabs {
		columns := make([]VariantResponse, 0, len(tab.Columns))
		for _, column := range tab.Columns {
			columns = append(columns, ToVariant(column))
		}
		out = append(out, TabResponse{ID: tab.ID, Label: tab.Label, Columns: columns})
	}
	return out
}

// MaskDetails returns a copy of details with VINs masked at any depth.
func MaskDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for key, value := range details {
		switch typed := value.(type) {
		case map[string]any:
			out[key] = MaskDetails(typed)
		case string:
			if _, ok := vinKeys[key]; ok {
				out[key] = sanitize.MaskVIN(typed)
				continue
			}
			out[key] = typed
		default:
			out[key] = value
		}
	}
	return out
}
