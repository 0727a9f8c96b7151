package db

import (
	"strings"
	"testing"
)

func TestOffersCascadeWithTheirOrder(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/00001_quote_orders.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	migration := strings.ToLower(string(raw))

	requiredFragments := []string{
		"references quote_orders (id) on delete cascade",
		"masked_identifier text",
		"idx_quote_orders_created_at",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(migration, fragment) {
			t.Fatalf("expected migration fragment %q to be present", fragment)
		}
	}
}
