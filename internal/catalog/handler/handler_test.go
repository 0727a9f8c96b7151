package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"insurance_portal_backend/internal/catalog/service"
	"insurance_portal_backend/internal/catalog/transport"
	"insurance_portal_backend/platform/logger"
	"insurance_portal_backend/platform/validator"
)

type stubTransport struct{}

func (stubTransport) Get(_ context.Context, _, _ string, out any) error {
	return json.Unmarshal([]byte(`[
		{"id": "a-rca", "category": "rca", "name": "RCA", "vendor": {"name": "A"}},
		{"id": "a-pad", "category": "pad", "name": "PAD", "vendor": {"name": "A"}}
	]`), out)
}

func (stubTransport) Post(context.Context, string, string, any, any) error {
	return errors.New("not used")
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(service.New(stubTransport{}, nil, time.Hour, logger.Nop()), validator.New())
	r := gin.New()
	r.GET("/catalog/products", h.ListProducts)
	return r
}

func TestListProductsByFamily(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/products?family=pad", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp transport.ProductListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ID != "a-pad" {
		t.Fatalf("unexpected listing %+v", resp)
	}
}

func TestListProductsRejectsUnknownFamily(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/products?family=travel", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
