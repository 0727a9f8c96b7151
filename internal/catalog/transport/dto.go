package transport

// ListProductsRequest filters the catalog listing.
type ListProductsRequest struct {
	Family string `form:"family" validate:"omitempty,oneof=rca casco pad house malpraxis garantii"`
}

type ProductResponse struct {
	ID         string `json:"id"`
	Family     string `json:"family"`
	VendorName string `json:"vendorName"`
	Name       string `json:"name"`
	LogoURL    string `json:"logoUrl,omitempty"`
}

type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}
