package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insurance_portal_backend/internal/catalog/service"
	"insurance_portal_backend/internal/catalog/transport"
	"insurance_portal_backend/platform/httpkit"
	"insurance_portal_backend/platform/validator"
)

// Handler handles HTTP requests for catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListProducts lists active insurer products, optionally for one family.
// GET /api/v1/catalog/products
func (h *Handler) ListProducts(c *gin.Context) {
	var req transport.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	products := h.svc.ByFamily(c.Request.Context(), req.Family)
	items := make([]transport.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, transport.ProductResponse{
			ID:         p.ID,
			Family:     p.Family,
			VendorName: p.VendorName,
			Name:       p.Name,
			LogoURL:    p.LogoURL,
		})
	}
	httpkit.OK(c, transport.ProductListResponse{Items: items, Total: len(items)})
}
