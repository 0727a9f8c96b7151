package consent

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"insurance_portal_backend/internal/aggregator/client"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/platform/logger"
)

type fakeTransport struct {
	signedAt time.Time
	getErr   error
	postErr  error
	gets     []string
	posts    []submitRequest
}

func (f *fakeTransport) Get(_ context.Context, path, _ string, out any) error {
	f.gets = append(f.gets, path)
	if f.getErr != nil {
		return f.getErr
	}
	out.(*consentRecord).SignedAt = f.signedAt
	return nil
}

func (f *fakeTransport) Post(_ context.Context, _, _ string, body, _ any) error {
	f.posts = append(f.posts, body.(submitRequest))
	return f.postErr
}

var applicant = domain.Applicant{LegalType: domain.LegalIndividual, Identifier: "1850101221144", Email: "ion@example.ro"}

func TestEnsureSkipsSubmissionWhenConsentIsValid(t *testing.T) {
	transport := &fakeTransport{signedAt: time.Now().Add(-24 * time.Hour)}
	New(transport, 365*24*time.Hour, logger.Nop()).Ensure(context.Background(), applicant, domain.FamilyRCA)

	if len(transport.posts) != 0 {
		t.Fatalf("expected no submission, got %d", len(transport.posts))
	}
	if !strings.Contains(transport.gets[0], "/consents/1850101221144?productType=rca") {
		t.Fatalf("unexpected lookup path %s", transport.gets[0])
	}
}

func TestEnsureSubmitsDefaultsWhenConsentExpired(t *testing.T) {
	transport := &fakeTransport{signedAt: time.Now().Add(-400 * 24 * time.Hour)}
	New(transport, 365*24*time.Hour, logger.Nop()).Ensure(context.Background(), applicant, domain.FamilyHouse)

	if len(transport.posts) != 1 {
		t.Fatalf("expected one submission, got %d", len(transport.posts))
	}
	submitted := transport.posts[0]
	if submitted.Family != domain.FamilyHouse || len(submitted.Answers) != 2 {
		t.Fatalf("unexpected submission %+v", submitted)
	}
	for _, answer := range submitted.Answers {
		if !answer.Accepted || answer.Clause == ClauseMarketing {
			t.Fatalf("unexpected default answer %+v", answer)
		}
	}
}

func TestEnsureSubmitsWhenConsentNotFound(t *testing.T) {
	transport := &fakeTransport{getErr: &client.APIError{Status: http.StatusNotFound}}
	New(transport, time.Hour, logger.Nop()).Ensure(context.Background(), applicant, domain.FamilyPAD)

	if len(transport.posts) != 1 {
		t.Fatalf("expected submission after 404, got %d", len(transport.posts))
	}
}

func TestEnsureNeverFails(t *testing.T) {
	transport := &fakeTransport{getErr: errors.New("connection reset"), postErr: errors.New("503")}

	// Ensure has no error return; reaching the assertion means nothing panicked.
	New(transport, time.Hour, logger.Nop()).Ensure(context.Background(), applicant, domain.FamilyCASCO)

	if len(transport.posts) != 1 {
		t.Fatalf("expected a submission attempt despite the failed lookup, got %d", len(transport.posts))
	}
}
