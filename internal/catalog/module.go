// Package catalog provides the insurer product catalog module.
package catalog

import (
	"insurance_portal_backend/internal/aggregator"
	"insurance_portal_backend/internal/catalog/handler"
	"insurance_portal_backend/internal/catalog/repository"
	"insurance_portal_backend/internal/catalog/service"
	apphttp "insurance_portal_backend/internal/http"
	"insurance_portal_backend/platform/config"
	"insurance_portal_backend/platform/logger"
	"insurance_portal_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Module is the catalog module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the catalog module.
// rdb may be nil, in which case only the in-memory tier is used.
func NewModule(transport aggregator.Transport, rdb redis.UniversalClient, val *validator.Validator, cfg config.CatalogConfig, log *logger.Logger) *Module {
	var cache repository.Cache
	if rdb != nil {
		cache = repository.NewRedisCache(rdb)
	}

	svc := service.New(transport, cache, cfg.GetCatalogCacheTTL(), log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/catalog/products", m.handler.ListProducts)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
