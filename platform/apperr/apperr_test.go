package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWithOpAndDetailsLeaveReceiverUntouched(t *testing.T) {
	shared := Gone("quoting session was superseded")

	decorated := shared.WithOp("offers.Create").WithDetails(map[string]any{"orderId": 42})

	if shared.Op != "" || shared.Details != nil {
		t.Fatalf("expected shared error to stay bare, got op %q details %v", shared.Op, shared.Details)
	}
	if decorated.Op != "offers.Create" || decorated.Details == nil {
		t.Fatalf("expected decorated copy, got op %q details %v", decorated.Op, decorated.Details)
	}
	if decorated.Error() != "offers.Create: quoting session was superseded" {
		t.Fatalf("unexpected message %q", decorated.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("create order: %w", Upstream("order creation failed", cause))

	if !Is(err, KindUpstream) {
		t.Fatalf("expected upstream kind, got %v", GetKind(err))
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected underlying cause to be reachable")
	}

	var appErr *Error
	if !errors.As(err, &appErr) || appErr.HTTPStatus() != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", appErr)
	}
}
