// Package pricing loads the comparison tabs and the flat-rate estimates used
// when a bundled rider cannot be quoted.
package pricing

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"insurance_portal_backend/internal/offers/domain"
)

//go:embed pricing.yaml
var defaultDocument []byte

// PropertyClass is the coarse structural classification used for PAD estimates.
type PropertyClass string

const (
	ClassA PropertyClass = "A"
	ClassB PropertyClass = "B"
)

// Tab is a named group of comparison columns.
type Tab struct {
	ID      string              `yaml:"id"`
	Label   string              `yaml:"label"`
	Columns []domain.VariantKey `yaml:"columns"`
}

// LastColumn returns the column that drives vendor ordering.
func (t Tab) LastColumn() (domain.VariantKey, bool) {
	if len(t.Columns) == 0 {
		return domain.VariantKey{}, false
	}
	return t.Columns[len(t.Columns)-1], true
}

// FlatRates are indicative premiums per property class.
type FlatRates struct {
	Currency string
	Message  string
	rates    map[PropertyClass]decimal.Decimal
}

// Rate returns the estimate for a class.
func (f FlatRates) Rate(class PropertyClass) (decimal.Decimal, bool) {
	rate, ok := f.rates[class]
	return rate, ok
}

// Config is the parsed pricing document.
type Config struct {
	Tabs        []Tab
	PADEstimate FlatRates
}

type document struct {
	Tabs        []Tab `yaml:"tabs"`
	PADEstimate struct {
		Currency string            `yaml:"currency"`
		Message  string            `yaml:"message"`
		Rates    map[string]string `yaml:"rates"`
	} `yaml:"padEstimate"`
}

// Load reads the pricing document at path, or the embedded defaults when path is empty.
func Load(path string) (*Config, error) {
	raw := defaultDocument
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read pricing file: %w", err)
		}
		raw = data
	}
	return Parse(raw)
}

// Default returns the embedded pricing document.
func Default() *Config {
	cfg, err := Parse(defaultDocument)
	if err != nil {
		panic("embedded pricing document is invalid: " + err.Error())
	}
	return cfg
}

// Parse decodes and validates a pricing document.
func Parse(raw []byte) (*Config, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode pricing document: %w", err)
	}

	cfg := &Config{Tabs: doc.Tabs}
	for _, tab := range cfg.Tabs {
		if tab.ID == "" || len(tab.Columns) == 0 {
			return nil, fmt.Errorf("tab %q must have an id and at least one column", tab.ID)
		}
		for _, col := range tab.Columns {
			if col.DurationMonths <= 0 {
				return nil, fmt.Errorf("tab %q has a column with non-positive duration", tab.ID)
			}
			if col.Settlement != domain.SettlementStandard && col.Settlement != domain.SettlementDirect {
				return nil, fmt.Errorf("tab %q has unknown settlement %q", tab.ID, col.Settlement)
			}
		}
	}

	cfg.PADEstimate = FlatRates{
		Currency: doc.PADEstimate.Currency,
		Message:  doc.PADEstimate.Message,
		rates:    make(map[PropertyClass]decimal.Decimal, len(doc.PADEstimate.Rates)),
	}
	if cfg.PADEstimate.Currency == "" {
		cfg.PADEstimate.Currency = "RON"
	}
	for class, value := range doc.PADEstimate.Rates {
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("pad rate for class %s: %w", class, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("pad rate for class %s must be positive", class)
		}
		cfg.PADEstimate.rates[PropertyClass(strings.ToUpper(class))] = rate
	}

	return cfg, nil
}

// Tab returns the tab with the given id.
func (c *Config) Tab(id string) (Tab, bool) {
	for _, tab := range c.Tabs {
		if tab.ID == id {
			return tab, true
		}
	}
	return Tab{}, false
}

// Columns returns every distinct column across all tabs, in tab order.
func (c *Config) Columns() []domain.VariantKey {
	seen := make(map[domain.VariantKey]struct{})
	columns := make([]domain.VariantKey, 0)
	for _, tab := range c.Tabs {
		for _, col := range tab.Columns {
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			columns = append(columns, col)
		}
	}
	return columns
}

// ClassifyStructure maps a building's structural material to a property class.
func ClassifyStructure(material string) PropertyClass {
	normalized := strings.ToLower(strings.TrimSpace(material))
	for _, marker := range []string{"beton", "concrete", "caramida", "cărămidă", "brick", "piatra", "piatră", "stone"} {
		if strings.Contains(normalized, marker) {
			return ClassA
		}
	}
	return ClassB
}

// Estimate builds the indicative offer for a class. It is always labeled
// estimated and carries no backend id.
func (f FlatRates) Estimate(productID string, class PropertyClass) (domain.Offer, bool) {
	rate, ok := f.Rate(class)
	if !ok {
		return domain.Offer{}, false
	}
	return domain.Estimated(productID, rate, f.Currency, f.Message), true
}
