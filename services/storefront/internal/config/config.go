package config

import (
	"fmt"
	"slices"
	"time"

	pkgconfig "github.com/limosnd/Marketplace-go-grahpql/pkg/config"
)

// Storage drivers.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
	StorageNone   = "none"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8090"`

	// GraphQL backend
	GraphQLEndpoint       string  `env:"GRAPHQL_ENDPOINT" envDefault:"http://localhost:8080/query"`
	GraphQLTimeoutSeconds int     `env:"GRAPHQL_TIMEOUT_SECONDS" envDefault:"10"`
	GraphQLMaxRetries     int     `env:"GRAPHQL_MAX_RETRIES" envDefault:"2"`
	GraphQLRateLimitRPS   float64 `env:"GRAPHQL_RATE_LIMIT_RPS" envDefault:"20"`

	// Local persistence
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"storefront.db"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass     string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_KEY_PREFIX" envDefault:"storefront:"`

	// Snapshot TTL in hours for the redis driver (default: 30 days)
	StorageTTLHours int `env:"STORAGE_TTL_HOURS" envDefault:"720"`

	// Kafka. Empty brokers disable both the sink and the source.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaConsume bool     `env:"KAFKA_CONSUME" envDefault:"false"`
	InstanceID   string   `env:"STOREFRONT_INSTANCE_ID" envDefault:""`

	// Browser origins allowed to call the API
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Cache-Control max-age in seconds for single car and search responses
	CatalogCacheSeconds int `env:"CATALOG_CACHE_SECONDS" envDefault:"30"`

	// Profiling endpoints, served only to the allowlisted networks
	PprofEnabled   bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowlist []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:"," envDefault:"127.0.0.0/8,::1/128"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GraphQLTimeout is the per-request timeout of the GraphQL client.
func (c *Config) GraphQLTimeout() time.Duration {
	return time.Duration(c.GraphQLTimeoutSeconds) * time.Second
}

// StorageTTL is the expiry applied to redis snapshots.
func (c *Config) StorageTTL() time.Duration {
	return time.Duration(c.StorageTTLHours) * time.Hour
}

// KafkaEnabled reports whether car notifications are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GraphQLEndpoint == "" {
		return fmt.Errorf("GRAPHQL_ENDPOINT is required")
	}
	if c.GraphQLTimeoutSeconds < 1 {
		return fmt.Errorf("GRAPHQL_TIMEOUT_SECONDS must be positive, got %d", c.GraphQLTimeoutSeconds)
	}
	if c.GraphQLMaxRetries < 0 {
		return fmt.Errorf("GRAPHQL_MAX_RETRIES must not be negative, got %d", c.GraphQLMaxRetries)
	}
	if c.GraphQLRateLimitRPS < 0 {
		return fmt.Errorf("GRAPHQL_RATE_LIMIT_RPS must not be negative, got %g", c.GraphQLRateLimitRPS)
	}
	drivers := []string{StorageSQLite, StorageRedis, StorageMemory, StorageNone}
	if !slices.Contains(drivers, c.StorageDriver) {
		return fmt.Errorf("STORAGE_DRIVER must be one of %v, got %q", drivers, c.StorageDriver)
	}
	if c.StorageDriver == StorageSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	if c.StorageDriver == StorageRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required for the redis driver")
	}
	if c.KafkaConsume && !c.KafkaEnabled() {
		return fmt.Errorf("KAFKA_CONSUME requires KAFKA_BROKERS")
	}
	if c.CatalogCacheSeconds < 0 {
		return fmt.Errorf("CATALOG_CACHE_SECONDS must not be negative, got %d", c.CatalogCacheSeconds)
	}
	if c.PprofEnabled && len(c.PprofAllowlist) == 0 {
		return fmt.Errorf("PPROF_ENABLED requires PPROF_ALLOWED_CIDRS")
	}
	if c.OTELSampleRate < 0.0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
