package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"insurance_portal_backend/internal/offers/aggregate"
	"insurance_portal_backend/internal/offers/compare"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/pricing"
	"insurance_portal_backend/internal/offers/service"
	"insurance_portal_backend/internal/offers/transport"
	"insurance_portal_backend/platform/apperr"
	"insurance_portal_backend/platform/validator"
)

type stubProduct struct {
	service.Product
	family domain.ProductFamily
}

func (s stubProduct) Family() domain.ProductFamily { return s.family }

type stubResolver struct{}

func (stubResolver) Get(family domain.ProductFamily) (service.Product, bool) {
	if family == domain.FamilyGarantii {
		return nil, false
	}
	return stubProduct{family: family}, true
}

type stubService struct {
	input    service.Input
	family   domain.ProductFamily
	snapshot error
	hash     string
}

func (s *stubService) CreateOrderAndOffers(_ context.Context, in service.Input, product service.Product) (*service.Result, error) {
	s.input = in
	s.family = product.Family()
	offer := domain.Confirmed(1, "a-rca", decimal.NewFromInt(500), "RON")
	offer.VendorName = "A"
	return &service.Result{
		Order:   domain.Order{ID: 10, Hash: "h10", Family: product.Family(), Applicant: in.Applicant},
		Offers:  []domain.Offer{offer},
		Vendors: aggregate.GroupByVendor([]domain.Offer{offer}),
	}, nil
}

func (s *stubService) GetSnapshot(_ context.Context, _ int64, hash string) (*service.Result, error) {
	s.hash = hash
	if s.snapshot != nil {
		return nil, s.snapshot
	}
	return &service.Result{Order: domain.Order{ID: 10, Hash: hash}}, nil
}

func (s *stubService) Compare(context.Context, int64, string, string) (*compare.Grid, error) {
	tab, _ := pricing.Default().Tab("long")
	grid := compare.Build(nil, tab)
	return &grid, nil
}

func (s *stubService) Tabs() []pricing.Tab {
	return pricing.Default().Tabs
}

func newRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(svc, stubResolver{}, validator.New())
	r := gin.New()
	r.POST("/offers/:family", h.CreateOffers)
	r.GET("/offers/tabs", h.ListTabs)
	r.GET("/offers/orders/:orderId", h.GetOffers)
	r.GET("/offers/orders/:orderId/compare", h.Compare)
	return r
}

const validRequest = `{
	"passId": "2f1c9a4e-6c1b-4c8e-9d55-6f0f0b8f1a11",
	"applicant": {
		"legalType": "individual",
		"identifier": "1900101123456",
		"firstName": "Ion",
		"lastName": "Popescu",
		"email": "ion@example.ro",
		"phone": "0722123456",
		"address": {"countyId": 40, "cityId": 179132, "street": "Str. Lalelelor", "number": "7"}
	},
	"details": {"vehicle": {"vin": "WVWZZZ1JZXW000001", "category": "M1"}}
}`

func TestCreateOffers(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/offers/rca", bytes.NewBufferString(validRequest))
	req.Header.Set("Content-Type", "application/json")
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.family != domain.FamilyRCA || svc.input.Applicant.LastName != "Popescu" {
		t.Fatalf("unexpected service input %+v", svc.input)
	}

	var resp transport.OffersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Order.ApplicantMasked == "1900101123456" {
		t.Fatal("expected masked identifier in response")
	}
	if len(resp.Vendors) != 1 || resp.Vendors[0].Offers[0].Status != "confirmed" {
		t.Fatalf("unexpected vendors %+v", resp.Vendors)
	}
}

func TestCreateOffersRejectsInvalidApplicant(t *testing.T) {
	body := bytes.Replace([]byte(validRequest), []byte(`"ion@example.ro"`), []byte(`"not-an-email"`), 1)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/offers/rca", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newRouter(&stubService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateOffersUnknownFamily(t *testing.T) {
	for _, family := range []string{"travel", "garantii"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/offers/"+family, bytes.NewBufferString(validRequest))
		newRouter(&stubService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", family, rec.Code)
		}
	}
}

func TestGetOffersMapsSupersededToGone(t *testing.T) {
	svc := &stubService{snapshot: apperr.Gone("quoting session was superseded by a newer one")}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers/orders/10?hash=abc", nil))

	if rec.Code != http.StatusGone {
		t.Fatalf("expected 410, got %d", rec.Code)
	}
	if svc.hash != "abc" {
		t.Fatalf("expected hash to be forwarded, got %q", svc.hash)
	}
}

func TestGetOffersRequiresHash(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers/orders/10", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCompareRejectsBadOrderID(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers/orders/x/compare?hash=a&tab=long", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCompareReturnsGrid(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers/orders/10/compare?hash=a&tab=long", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var grid transport.GridResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &grid); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if grid.Tab != "long" || len(grid.Columns) != 2 {
		t.Fatalf("unexpected grid %+v", grid)
	}
}

func TestListTabs(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers/tabs", nil))

	var tabs []transport.TabResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tabs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tabs) != 3 || tabs[2].ID != "long-direct" {
		t.Fatalf("unexpected tabs %+v", tabs)
	}
}
