package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/offers")
	t.Setenv("AGGREGATOR_BASE_URL", "https://api.aggregator.test/")
	t.Setenv("AGGREGATOR_USERNAME", "broker")
	t.Setenv("AGGREGATOR_PASSWORD", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AggregatorBaseURL != "https://api.aggregator.test" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.AggregatorBaseURL)
	}
	if cfg.AggregatorTimeout != 45*time.Second {
		t.Fatalf("expected default timeout 45s, got %s", cfg.AggregatorTimeout)
	}
	if cfg.ConsentValidity != 365*24*time.Hour {
		t.Fatalf("expected default consent validity of one year, got %s", cfg.ConsentValidity)
	}
	if cfg.OfferBatchLimit != 0 {
		t.Fatalf("expected unbounded batch by default, got %d", cfg.OfferBatchLimit)
	}
	if cfg.GetPhoneRegion() != "RO" {
		t.Fatalf("expected RO phone region by default, got %q", cfg.GetPhoneRegion())
	}
}

func TestLoadPhoneRegionIsUpperCased(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PHONE_REGION", "md")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.GetPhoneRegion() != "MD" {
		t.Fatalf("expected MD, got %q", cfg.GetPhoneRegion())
	}
}

func TestLoadRequiresAggregatorCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AGGREGATOR_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when aggregator password is missing")
	}
}

func TestLoadWildcardOriginEnablesAllowAll(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "https://rca.example.ro, *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.CORSAllowAll {
		t.Fatal("expected wildcard origin to enable CORS allow all")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
}
