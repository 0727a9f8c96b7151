// Package service provides the insurer product catalog with a two-tier cache.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/catalog/repository"
	"insurance_portal_backend/platform/logger"
)

const productsPath = "/products"

// refreshBackoff bounds how often a failing backend is retried from the
// lookup path. Lookups in between serve the stale copy without waiting.
const refreshBackoff = 30 * time.Second

// Service serves catalog lookups from memory, then Redis, then the backend.
type Service struct {
	transport aggregator.Transport
	cache     repository.Cache
	log       *logger.Logger
	ttl       time.Duration
	now       func() time.Time

	mu        sync.RWMutex
	byID      map[string]repository.Product
	ordered   []repository.Product
	expiresAt time.Time
	refreshMu sync.Mutex
}

// New creates a catalog service. cache may be nil when Redis is not configured.
func New(transport aggregator.Transport, cache repository.Cache, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{
		transport: transport,
		cache:     cache,
		log:       log,
		ttl:       ttl,
		now:       time.Now,
		byID:      make(map[string]repository.Product),
	}
}

// apiProduct is the raw product entry returned by the aggregation backend.
type apiProduct struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Active   *bool  `json:"active"`
	Vendor   struct {
		Name string `json:"name"`
		Logo string `json:"logo"`
	} `json:"vendor"`
}

func (a apiProduct) toProduct() repository.Product {
	active := true
	if a.Active != nil {
		active = *a.Active
	}
	return repository.Product{
		ID:         strings.TrimSpace(a.ID),
		Family:     strings.ToLower(strings.TrimSpace(a.Category)),
		VendorName: strings.TrimSpace(a.Vendor.Name),
		Name:       strings.TrimSpace(a.Name),
		LogoURL:    a.Vendor.Logo,
		Active:     active,
	}
}

// Lookup returns the product with the given id.
func (s *Service) Lookup(ctx context.Context, id string) (repository.Product, bool) {
	s.ensure(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.byID[id]
	return product, ok
}

// ByFamily returns the active products of a family in catalog order.
func (s *Service) ByFamily(ctx context.Context, family string) []repository.Product {
	s.ensure(ctx)

	family = strings.ToLower(strings.TrimSpace(family))

	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]repository.Product, 0)
	for _, product := range s.ordered {
		if !product.Active {
			continue
		}
		if family != "" && product.Family != family {
			continue
		}
		result = append(result, product)
	}
	return result
}

// Refresh fetches the catalog from the backend and updates both cache tiers.
func (s *Service) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Service) refreshLocked(ctx context.Context) error {
	var raw []apiProduct
	if err := s.transport.Get(ctx, productsPath, "", &raw); err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}

	products := make([]repository.Product, 0, len(raw))
	for _, item := range raw {
		product := item.toProduct()
		if product.ID == "" {
			continue
		}
		products = append(products, product)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].VendorName < products[j].VendorName
	})

	s.replace(products)

	if s.cache != nil {
		if err := s.cache.Store(ctx, products, s.ttl); err != nil {
			s.log.Warn("failed to store catalog snapshot", "error", err)
		}
	}
	s.log.Info("catalog refreshed", "products", len(products))
	return nil
}

// ensure loads the catalog when the in-memory copy has expired. Failures
// keep serving the stale copy until the backoff window passes.
func (s *Service) ensure(ctx context.Context) {
	if s.fresh() {
		return
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if s.fresh() {
		return
	}

	if s.cache != nil {
		products, err := s.cache.Load(ctx)
		switch {
		case err == nil:
			s.replace(products)
			return
		case !errors.Is(err, repository.ErrCacheMiss):
			s.log.Warn("failed to load catalog snapshot", "error", err)
		}
	}

	if err := s.refreshLocked(ctx); err != nil {
		s.log.Warn("catalog refresh failed, serving stale entries", "error", err)
		s.backoff()
	}
}

func (s *Service) backoff() {
	wait := refreshBackoff
	if s.ttl > 0 && s.ttl < wait {
		wait = s.ttl
	}

	s.mu.Lock()
	s.expiresAt = s.now().Add(wait)
	s.mu.Unlock()
}

func (s *Service) fresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.expiresAt.IsZero() && s.now().Before(s.expiresAt)
}

func (s *Service) replace(products []repository.Product) {
	byID := make(map[string]repository.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	s.mu.Lock()
	s.byID = byID
	s.ordered = products
	s.expiresAt = s.now().Add(s.ttl)
	s.mu.Unlock()
}
