package repository

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"insurance_portal_backend/internal/offers/domain"
)

func TestSupersedeQueryIsScopedToOtherOrdersOfThePass(t *testing.T) {
	query := strings.ToLower(supersedeOrdersQuery)

	requiredFragments := []string{
		"update quote_orders",
		"where pass_id = $1 and id <> $2",
		"and status = $4",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected supersede query fragment %q to be present", fragment)
		}
	}
}

func TestPurgeQueryDeletesOrdersOnly(t *testing.T) {
	query := strings.ToLower(purgeOrdersQuery)

	if !strings.Contains(query, "delete from quote_orders where created_at < $1") {
		t.Fatalf("unexpected purge query %q", purgeOrdersQuery)
	}
	if strings.Contains(query, "quote_offers") {
		t.Fatal("offers should be removed by the cascading foreign key, not by the purge query")
	}
}

func TestOffersAreReadInPositionOrder(t *testing.T) {
	query := strings.ToLower(selectOffersQuery)

	if !strings.Contains(query, "where order_id = $1") || !strings.Contains(query, "order by position") {
		t.Fatalf("unexpected offers query %q", selectOffersQuery)
	}
}

func TestOrderArgsMaskIdentifier(t *testing.T) {
	snapshot := Snapshot{
		PassID: "pass-1",
		Order: domain.Order{
			ID:        42,
			Hash:      "h",
			Family:    domain.FamilyRCA,
			Applicant: domain.Applicant{LegalType: domain.LegalIndividual, Identifier: "1850101221144"},
		},
	}

	args := orderArgs(snapshot)
	if len(args) != 7 {
		t.Fatalf("expected 7 args, got %d", len(args))
	}
	masked, ok := args[5].(string)
	if !ok || masked == "1850101221144" || strings.Contains(masked, "0101221") {
		t.Fatalf("expected masked identifier, got %v", args[5])
	}
	if args[6] != StatusActive {
		t.Fatalf("expected new orders to be active, got %v", args[6])
	}
}

func TestStoredOfferKeepsStatusReasonVariantAndPremium(t *testing.T) {
	offer := domain.Offer{
		ID:          7,
		ProductID:   "allianz-rca",
		VendorName:  "Allianz-Tiriac",
		Premium:     decimal.RequireFromString("1234.56"),
		Currency:    "RON",
		Variant:     &domain.VariantKey{DurationMonths: 6, Settlement: domain.SettlementDirect},
		Status:      domain.StatusUnavailable,
		Reason:      domain.ReasonDropped,
		Message:     domain.DroppedMessage,
	}
	offer.Installments = []domain.Installment{{Number: 1, Amount: decimal.RequireFromString("617.28")}}

	payload, err := json.Marshal(toStored(offer))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var stored storedOffer
	if err := json.Unmarshal(payload, &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := stored.toDomain()

	if got.Status != domain.StatusUnavailable || got.Reason != domain.ReasonDropped {
		t.Fatalf("expected unavailable/dropped, got %s/%s", got.Status, got.Reason)
	}
	if got.Variant == nil || !got.Variant.Equal(*offer.Variant) {
		t.Fatalf("expected variant %v, got %v", offer.Variant, got.Variant)
	}
	if !got.Premium.Equal(offer.Premium) {
		t.Fatalf("expected premium %s, got %s", offer.Premium, got.Premium)
	}
	if got.Key() != offer.Key() {
		t.Fatalf("expected key %s, got %s", offer.Key(), got.Key())
	}
	if len(got.Installments) != 1 || !got.Installments[0].Amount.Equal(decimal.RequireFromString("617.28")) {
		t.Fatalf("unexpected installments %+v", got.Installments)
	}
}
