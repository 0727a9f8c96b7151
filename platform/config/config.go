// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// AggregatorConfig provides settings for the insurer aggregation backend.
type AggregatorConfig interface {
	GetAggregatorBaseURL() string
	GetAggregatorUsername() string
	GetAggregatorPassword() string
	GetAggregatorTimeout() time.Duration
}

// RedisConfig provides settings for the shared Redis instance.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetCatalogRefreshCron() string
	GetSnapshotPurgeCron() string
	GetSnapshotRetention() time.Duration
}

// CatalogConfig provides settings for the product catalog cache.
type CatalogConfig interface {
	GetCatalogCacheTTL() time.Duration
}

// OffersConfig provides settings for the offer aggregation engine.
type OffersConfig interface {
	GetConsentValidity() time.Duration
	GetOfferBatchLimit() int
	GetSessionTTL() time.Duration
	GetPricingFile() string
	GetPhoneRegion() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	CORSAllowAll       bool
	CORSOrigins        []string
	RateLimitRPS       float64
	RateLimitBurst     int
	AggregatorBaseURL  string
	AggregatorUsername string
	AggregatorPassword string
	AggregatorTimeout  time.Duration
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	CatalogRefreshCron string
	SnapshotPurgeCron  string
	SnapshotRetention  time.Duration
	CatalogCacheTTL    time.Duration
	ConsentValidity    time.Duration
	OfferBatchLimit    int
	SessionTTL         time.Duration
	PricingFile        string
	PhoneRegion        string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// AggregatorConfig implementation
func (c *Config) GetAggregatorBaseURL() string        { return c.AggregatorBaseURL }
func (c *Config) GetAggregatorUsername() string       { return c.AggregatorUsername }
func (c *Config) GetAggregatorPassword() string       { return c.AggregatorPassword }
func (c *Config) GetAggregatorTimeout() time.Duration { return c.AggregatorTimeout }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string     { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int      { return c.AsynqConcurrency }
func (c *Config) GetCatalogRefreshCron() string { return c.CatalogRefreshCron }
func (c *Config) GetSnapshotPurgeCron() string  { return c.SnapshotPurgeCron }
func (c *Config) GetSnapshotRetention() time.Duration {
	return c.SnapshotRetention
}

// CatalogConfig implementation
func (c *Config) GetCatalogCacheTTL() time.Duration { return c.CatalogCacheTTL }

// OffersConfig implementation
func (c *Config) GetConsentValidity() time.Duration { return c.ConsentValidity }
func (c *Config) GetOfferBatchLimit() int           { return c.OfferBatchLimit }
func (c *Config) GetSessionTTL() time.Duration      { return c.SessionTTL }
func (c *Config) GetPricingFile() string            { return c.PricingFile }
func (c *Config) GetPhoneRegion() string            { return c.PhoneRegion }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		RateLimitRPS:       mustFloat(getEnv("RATE_LIMIT_RPS", "5")),
		RateLimitBurst:     mustInt(getEnv("RATE_LIMIT_BURST", "20")),
		AggregatorBaseURL:  strings.TrimRight(getEnv("AGGREGATOR_BASE_URL", ""), "/"),
		AggregatorUsername: getEnv("AGGREGATOR_USERNAME", ""),
		AggregatorPassword: getEnv("AGGREGATOR_PASSWORD", ""),
		AggregatorTimeout:  mustDuration(getEnv("AGGREGATOR_TIMEOUT", "45s")),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		CatalogRefreshCron: getEnv("CATALOG_REFRESH_CRON", "@every 30m"),
		SnapshotPurgeCron:  getEnv("SNAPSHOT_PURGE_CRON", "15 3 * * *"),
		SnapshotRetention:  mustDuration(getEnv("SNAPSHOT_RETENTION", "720h")),
		CatalogCacheTTL:    mustDuration(getEnv("CATALOG_CACHE_TTL", "1h")),
		ConsentValidity:    mustDuration(getEnv("CONSENT_VALIDITY", "8760h")),
		OfferBatchLimit:    mustInt(getEnv("OFFER_BATCH_LIMIT", "0")),
		SessionTTL:         mustDuration(getEnv("SESSION_TTL", "2h")),
		PricingFile:        getEnv("PRICING_FILE", ""),
		PhoneRegion:        strings.ToUpper(getEnv("PHONE_REGION", "RO")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AggregatorBaseURL == "" {
		return nil, fmt.Errorf("AGGREGATOR_BASE_URL is required")
	}
	if cfg.AggregatorUsername == "" || cfg.AggregatorPassword == "" {
		return nil, fmt.Errorf("AGGREGATOR_USERNAME and AGGREGATOR_PASSWORD are required")
	}
	if cfg.AggregatorTimeout <= 0 {
		return nil, fmt.Errorf("AGGREGATOR_TIMEOUT must be a positive duration")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
