package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"insurance_portal_backend/internal/offers/compare"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/pricing"
	"insurance_portal_backend/internal/offers/service"
	"insurance_portal_backend/internal/offers/transport"
	"insurance_portal_backend/platform/httpkit"
	"insurance_portal_backend/platform/validator"
)

// OffersService is the part of the offers service the handler drives.
type OffersService interface {
	CreateOrderAndOffers(ctx context.Context, in service.Input, product service.Product) (*service.Result, error)
	GetSnapshot(ctx context.Context, orderID int64, hash string) (*service.Result, error)
	Compare(ctx context.Context, orderID int64, hash, tabID string) (*compare.Grid, error)
	Tabs() []pricing.Tab
}

// ProductResolver maps a family to its product strategy.
type ProductResolver interface {
	Get(family domain.ProductFamily) (service.Product, bool)
}

type Handler struct {
	svc      OffersService
	products ProductResolver
	val      *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgUnknownFamily    = "unknown product family"
	msgInvalidOrderID   = "invalid order id"
)

func New(svc OffersService, products ProductResolver, val *validator.Validator) *Handler {
	return &Handler{svc: svc, products: products, val: val}
}

// CreateOffers opens a quoting session and returns every insurer's answer.
// POST /api/v1/offers/:family
func (h *Handler) CreateOffers(c *gin.Context) {
	family, err := domain.ParseFamily(c.Param("family"))
	if err != nil {
		httpkit.Error(c, http.StatusNotFound, msgUnknownFamily, nil)
		return
	}
	product, ok := h.products.Get(family)
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgUnknownFamily, nil)
		return
	}

	var req transport.CreateOffersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateOrderAndOffers(c.Request.Context(), service.Input{
		PassID:    req.PassID,
		Applicant: req.Applicant.ToApplicant(),
		Details:   req.Details,
	}, product)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToOffersResponse(result))
}

// GetOffers returns the stored offers of an order.
// GET /api/v1/offers/orders/:orderId?hash=
func (h *Handler) GetOffers(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var query transport.SnapshotQuery
	if !h.bindQuery(c, &query) {
		return
	}

	result, err := h.svc.GetSnapshot(c.Request.Context(), orderID, query.Hash)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToOffersResponse(result))
}

// Compare returns the comparison grid of one tab.
// GET /api/v1/offers/orders/:orderId/compare?hash=&tab=
func (h *Handler) Compare(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var query transport.CompareQuery
	if !h.bindQuery(c, &query) {
		return
	}

	grid, err := h.svc.Compare(c.Request.Context(), orderID, query.Hash, query.Tab)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToGridResponse(grid))
}

// ListTabs returns the configured comparison tabs.
// GET /api/v1/offers/tabs
func (h *Handler) ListTabs(c *gin.Context) {
	httpkit.OK(c, transport.ToTabs(h.svc.Tabs()))
}

func (h *Handler) bindQuery(c *gin.Context, out any) bool {
	if err := c.ShouldBindQuery(out); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(out); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func parseOrderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidOrderID, nil)
		return 0, false
	}
	return id, true
}
