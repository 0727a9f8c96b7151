package httpkit

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"insurance_portal_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestHandleErrorUsesWrappedDomainKind(t *testing.T) {
	c, rec := newTestContext()
	err := fmt.Errorf("create order: %w", apperr.Upstream("order rejected", nil).WithDetails(map[string]any{"status": 422}))

	if !HandleError(c, err) {
		t.Fatal("expected error to be handled")
	}
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":422`) {
		t.Fatalf("expected details in body, got %s", rec.Body.String())
	}
}

func TestHandleErrorHidesUntypedErrors(t *testing.T) {
	c, rec := newTestContext()

	HandleError(c, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("expected internal error text to stay hidden, got %s", rec.Body.String())
	}
}

func TestHandleErrorNil(t *testing.T) {
	c, _ := newTestContext()
	if HandleError(c, nil) {
		t.Fatal("expected nil error to be ignored")
	}
}
