// Package consent makes sure the applicant has a signed data-processing
// consent before a quoting session is created.
package consent

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/aggregator/client"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/platform/logger"
)

const consentsPath = "/consents"

// Clause identifiers understood by the backend.
const (
	ClauseDataProcessing = "data_processing"
	ClauseContact        = "contact"
	ClauseMarketing      = "marketing"
)

// defaultAnswers are submitted when no valid consent exists. The marketing
// clause is optional and left unanswered.
var defaultAnswers = []Answer{
	{Clause: ClauseDataProcessing, Accepted: true},
	{Clause: ClauseContact, Accepted: true},
}

// Answer is one clause of a consent form.
type Answer struct {
	Clause   string `json:"clause"`
	Accepted bool   `json:"accepted"`
}

type consentRecord struct {
	SignedAt time.Time `json:"signedAt"`
}

type submitRequest struct {
	Identifier string               `json:"identifier"`
	LegalType  domain.LegalType     `json:"legalType"`
	Family     domain.ProductFamily `json:"productType"`
	Email      string               `json:"email,omitempty"`
	Answers    []Answer             `json:"answers"`
}

// Gate checks and submits consents.
type Gate struct {
	transport aggregator.Transport
	validity  time.Duration
	now       func() time.Time
	log       *logger.Logger
}

// New creates a consent gate. A consent signed more than validity ago counts as absent.
func New(transport aggregator.Transport, validity time.Duration, log *logger.Logger) *Gate {
	return &Gate{transport: transport, validity: validity, now: time.Now, log: log}
}

// Ensure is best effort: order creation enforces consent on its own and
// fails loudly when it is really missing, so failures here are only logged.
func (g *Gate) Ensure(ctx context.Context, applicant domain.Applicant, family domain.ProductFamily) {
	log := g.log.WithContext(ctx)

	valid, err := g.hasValidConsent(ctx, applicant, family)
	if err != nil {
		log.Warn("consent check failed", "error", err, "family", family)
	}
	if valid {
		return
	}

	req := submitRequest{
		Identifier: applicant.Identifier,
		LegalType:  applicant.LegalType,
		Family:     family,
		Email:      applicant.Email,
		Answers:    defaultAnswers,
	}
	if err := g.transport.Post(ctx, consentsPath, "", req, nil); err != nil {
		log.Warn("consent submission failed", "error", err, "family", family)
		return
	}
	log.Info("consent submitted", "family", family)
}

func (g *Gate) hasValidConsent(ctx context.Context, applicant domain.Applicant, family domain.ProductFamily) (bool, error) {
	params := url.Values{}
	params.Set("productType", string(family))
	path := fmt.Sprintf("%s/%s?%s", consentsPath, url.PathEscape(applicant.Identifier), params.Encode())

	var record consentRecord
	if err := g.transport.Get(ctx, path, "", &record); err != nil {
		if apiErr, ok := client.AsAPIError(err); ok && apiErr.Status == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}

	if record.SignedAt.IsZero() {
		return false, nil
	}
	if g.validity > 0 && g.now().Sub(record.SignedAt) > g.validity {
		return false, nil
	}
	return true, nil
}
