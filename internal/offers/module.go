// Package offers provides the offer aggregation module: one quoting session
// per wizard pass, fanned out to every eligible insurer product.
package offers

import (
	"fmt"

	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/events"
	apphttp "insurance_portal_backend/internal/http"
	"insurance_portal_backend/internal/offers/batch"
	"insurance_portal_backend/internal/offers/consent"
	"insurance_portal_backend/internal/offers/eligibility"
	"insurance_portal_backend/internal/offers/handler"
	"insurance_portal_backend/internal/offers/ports"
	"insurance_portal_backend/internal/offers/pricing"
	"insurance_portal_backend/internal/offers/products"
	"insurance_portal_backend/internal/offers/repository"
	"insurance_portal_backend/internal/offers/service"
	"insurance_portal_backend/internal/offers/session"
	"insurance_portal_backend/platform/config"
	"insurance_portal_backend/platform/logger"
	"insurance_portal_backend/platform/phone"
	"insurance_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the offers module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the offers module.
// pool may be nil, in which case snapshots are not stored; rdb may be nil,
// in which case pass supersession is tracked in memory; bus may be nil.
func NewModule(
	transport aggregator.Transport,
	catalog ports.CatalogReader,
	pool *pgxpool.Pool,
	rdb redis.UniversalClient,
	bus events.Bus,
	val *validator.Validator,
	cfg config.OffersConfig,
	log *logger.Logger,
) (*Module, error) {
	prices := pricing.Default()
	if path := cfg.GetPricingFile(); path != "" {
		loaded, err := pricing.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load pricing: %w", err)
		}
		prices = loaded
	}

	var registry session.Registry = session.NewMemoryRegistry(cfg.GetSessionTTL())
	if rdb != nil {
		registry = session.NewRedisRegistry(rdb, cfg.GetSessionTTL())
	}

	var repo repository.Repository
	if pool != nil {
		repo = repository.New(pool)
	}

	phones := phone.New(cfg.GetPhoneRegion())
	svc := service.New(service.Deps{
		Consent:  consent.New(transport, cfg.GetConsentValidity(), log),
		Orders:   session.NewCreator(transport, phones, log),
		Registry: registry,
		Filter:   eligibility.New(transport, log),
		Batch:    batch.New(catalog, cfg.GetOfferBatchLimit(), log),
		Repo:     repo,
		Pricing:  prices,
		Events:   bus,
		Phones:   phones,
		Log:      log,
	})

	return &Module{
		handler: handler.New(svc, products.NewRegistry(transport, catalog, prices, log), val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "offers"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts offers routes. Creating offers fans out to every
// insurer and sits behind the quote rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/offers")
	if ctx.QuoteRateLimiter != nil {
		group.POST("/:family", ctx.QuoteRateLimiter.RateLimit(), m.handler.CreateOffers)
	} else {
		group.POST("/:family", m.handler.CreateOffers)
	}
	group.GET("/tabs", m.handler.ListTabs)
	group.GET("/orders/:orderId", m.handler.GetOffers)
	group.GET("/orders/:orderId/compare", m.handler.Compare)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
