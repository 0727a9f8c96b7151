// Package session creates quoting sessions ("orders") on the aggregation
// backend and tracks which one is current for a wizard pass.
package session

import (
	"context"
	"strings"
	"time"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/aggregator/client"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/platform/apperr"
	"insurance_portal_backend/platform/logger"
	"insurance_portal_backend/platform/phone"
)

const ordersPath = "/orders"

// Creator issues quoting sessions.
type Creator struct {
	transport aggregator.Transport
	phones    *phone.Normalizer
	now       func() time.Time
	log       *logger.Logger
}

// NewCreator creates an order session creator. Applicant phones are sent
// in E.164 using the normalizer's home region.
func NewCreator(transport aggregator.Transport, phones *phone.Normalizer, log *logger.Logger) *Creator {
	if phones == nil {
		phones = phone.New(phone.DefaultRegion)
	}
	return &Creator{transport: transport, phones: phones, now: time.Now, log: log}
}

type createOrderRequest struct {
	ProductType domain.ProductFamily `json:"productType"`
	Applicant   applicantPayload     `json:"applicant"`
	Details     map[string]any       `json:"details,omitempty"`
}

type applicantPayload struct {
	LegalType   domain.LegalType `json:"legalType"`
	Identifier  string           `json:"identifier"`
	FirstName   string           `json:"firstName,omitempty"`
	LastName    string           `json:"lastName,omitempty"`
	CompanyName string           `json:"companyName,omitempty"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	Address     domain.Address   `json:"address"`
}

type createOrderResponse struct {
	ID        int64  `json:"id"`
	Hash      string `json:"hash"`
	OrderHash string `json:"orderHash"`
}

// Create opens a quoting session. It is attempted exactly once: a retry
// could open a duplicate billable session. Failures are returned as an
// Upstream error whose details carry the backend's status and body.
func (c *Creator) Create(ctx context.Context, applicant domain.Applicant, family domain.ProductFamily, details map[string]any) (domain.Order, error) {
	req := createOrderRequest{
		ProductType: family,
		Applicant: applicantPayload{
			LegalType:   applicant.LegalType,
			Identifier:  applicant.Identifier,
			FirstName:   applicant.FirstName,
			LastName:    applicant.LastName,
			CompanyName: applicant.CompanyName,
			Email:       strings.TrimSpace(applicant.Email),
			Phone:       c.phones.E164(applicant.Phone),
			Address:     applicant.Address,
		},
		Details: details,
	}

	var resp createOrderResponse
	if err := c.transport.Post(ctx, ordersPath, "", req, &resp); err != nil {
		return domain.Order{}, sessionError(err)
	}

	hash := resp.Hash
	if hash == "" {
		hash = resp.OrderHash
	}
	if resp.ID <= 0 || hash == "" {
		return domain.Order{}, apperr.Upstream("order creation returned no session", nil).
			WithOp("session.Create").
			WithDetails(map[string]any{"id": resp.ID})
	}

	c.log.WithContext(ctx).Info("order created", "order_id", resp.ID, "family", family)
	return domain.Order{
		ID:        resp.ID,
		Hash:      hash,
		Family:    family,
		Applicant: applicant,
		CreatedAt: c.now(),
	}, nil
}

// sessionError keeps the backend payload intact so support can diagnose it.
func sessionError(err error) error {
	details := map[string]any{"status": 0}
	message := "order creation failed"

	if apiErr, ok := client.AsAPIError(err); ok {
		details["status"] = apiErr.Status
		details["body"] = apiErr.RawBody()
		message = apiErr.Message()
	} else {
		details["error"] = err.Error()
	}

	return apperr.Upstream(message, err).WithOp("session.Create").WithDetails(details)
}
