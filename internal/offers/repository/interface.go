// Package repository persists offer snapshots for the payment step and for
// support diagnosis.
package repository

import (
	"context"
	"errors"
	"time"

	"insurance_portal_backend/internal/offers/domain"
)

// ErrNotFound is returned when no snapshot exists for an order.
var ErrNotFound = errors.New("offer snapshot not found")

// Order statuses.
const (
	StatusActive     = "active"
	StatusSuperseded = "superseded"
)

// Snapshot is a merged offer set as shown to the user.
type Snapshot struct {
	Order     domain.Order
	PassID    string
	Status    string
	Offers    []domain.Offer
	Ancillary *domain.Offer
	CreatedAt time.Time
}

// Repository stores snapshots.
type Repository interface {
	// SaveSnapshot stores the snapshot and marks older orders of the same pass superseded.
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	GetSnapshot(ctx context.Context, orderID int64) (Snapshot, error)
}
