package domain

import "fmt"

// SettlementMode is how claims are settled for an RCA policy.
type SettlementMode string

const (
	SettlementStandard SettlementMode = "standard"
	// SettlementDirect is "decontare directă": the insurer pays the victim directly.
	SettlementDirect SettlementMode = "direct"
)

// VariantKey identifies a selectable pricing column.
type VariantKey struct {
	DurationMonths int            `json:"durationMonths" yaml:"durationMonths"`
	Settlement     SettlementMode `json:"settlement" yaml:"settlement"`
}

// String renders the key as "12m-direct".
func (k VariantKey) String() string {
	return fmt.Sprintf("%dm-%s", k.DurationMonths, k.Settlement)
}

// Equal compares both fields exactly.
func (k VariantKey) Equal(other VariantKey) bool {
	return k.DurationMonths == other.DurationMonths && k.Settlement == other.Settlement
}
