// Package eligibility narrows a candidate product list before offers are requested.
package eligibility

import (
	"context"
	"fmt"
	"strings"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/platform/logger"
	"insurance_portal_backend/platform/sanitize"
)

// DefaultRejection is used when the backend leaves a candidate out of both lists.
const DefaultRejection = "Produsul nu este disponibil pentru profilul de risc declarat"

// Result splits candidates into eligible ids (in candidate order) and
// rejected ids with their reason.
type Result struct {
	Eligible []string
	Rejected map[string]string
}

// IsRejected reports whether id was rejected.
func (r Result) IsRejected(id string) bool {
	_, ok := r.Rejected[id]
	return ok
}

type filterRequest struct {
	ProductIDs []string       `json:"productIds"`
	Risk       map[string]any `json:"risk"`
}

type filterResponse struct {
	Eligible []string `json:"eligible"`
	Rejected []struct {
		ProductID string `json:"productId"`
		Reason    string `json:"reason"`
	} `json:"rejected"`
}

// Filter calls the eligibility endpoint of the aggregation backend.
type Filter struct {
	transport aggregator.Transport
	log       *logger.Logger
}

// New creates an eligibility filter.
func New(transport aggregator.Transport, log *logger.Logger) *Filter {
	return &Filter{transport: transport, log: log}
}

// Filter never blocks the flow: when the eligibility service fails every
// candidate is treated as eligible.
func (f *Filter) Filter(ctx context.Context, order domain.Order, candidates []string, risk map[string]any) Result {
	allEligible := Result{Eligible: append([]string(nil), candidates...), Rejected: map[string]string{}}
	if len(candidates) == 0 {
		return allEligible
	}

	var resp filterResponse
	path := fmt.Sprintf("/orders/%d/eligibility", order.ID)
	if err := f.transport.Post(ctx, path, order.Hash, filterRequest{ProductIDs: candidates, Risk: risk}, &resp); err != nil {
		f.log.WithContext(ctx).Warn("eligibility check failed, treating all candidates as eligible",
			"error", err, "order_id", order.ID, "candidates", len(candidates))
		return allEligible
	}

	eligible := make(map[string]struct{}, len(resp.Eligible))
	for _, id := range resp.Eligible {
		eligible[id] = struct{}{}
	}
	reasons := make(map[string]string, len(resp.Rejected))
	for _, item := range resp.Rejected {
		reasons[item.ProductID] = sanitize.Text(item.Reason)
	}

	result := Result{Eligible: make([]string, 0, len(candidates)), Rejected: make(map[string]string)}
	for _, id := range candidates {
		if _, ok := eligible[id]; ok {
			result.Eligible = append(result.Eligible, id)
			continue
		}
		reason := strings.TrimSpace(reasons[id])
		if reason == "" {
			reason = DefaultRejection
		}
		result.Rejected[id] = reason
	}
	return result
}
