// Package repository holds the catalog entities and the shared cache tier.
package repository

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when the shared cache holds no catalog snapshot.
var ErrCacheMiss = errors.New("catalog cache miss")

// Product is one insurer product offered through the aggregation backend.
type Product struct {
	ID         string `json:"id"`
	Family     string `json:"family"`
	VendorName string `json:"vendorName"`
	Name       string `json:"name"`
	LogoURL    string `json:"logoUrl,omitempty"`
	Active     bool   `json:"active"`
}

// Cache stores the full catalog snapshot shared by the API and the scheduler.
type Cache interface {
	Load(ctx context.Context) ([]Product, error)
	Store(ctx context.Context, products []Product, ttl time.Duration) error
}
