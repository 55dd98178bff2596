// Package config loads the service configuration from the environment.
package config

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/viper"
)

// Config is the complete service configuration.
type Config struct {
	AppPort  string
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Session  SessionConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// RabbitMQConfig is disabled when URL is empty.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// RedisConfig selects the Redis stock table when URL is set.
type RedisConfig struct {
	URL string
}

type CatalogConfig struct {
	BaseURL  string
	PageSize int
	Sync     bool
	Timeout  time.Duration
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:storefront.db?cache=shared")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "checkout_events")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CATALOG_BASE_URL", "https://dummyjson.com")
	v.SetDefault("CATALOG_PAGE_SIZE", 20)
	v.SetDefault("CATALOG_SYNC", false)
	v.SetDefault("CATALOG_TIMEOUT", "10s")
	v.SetDefault("SESSION_SECRET", "change-me")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads the configuration from environment variables on top of the
// defaults.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds and checks a Config from an already populated viper.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort: v.GetString("APP_PORT"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		Catalog: CatalogConfig{
			BaseURL:  strings.TrimRight(v.GetString("CATALOG_BASE_URL"), "/"),
			PageSize: v.GetInt("CATALOG_PAGE_SIZE"),
			Sync:     v.GetBool("CATALOG_SYNC"),
			Timeout:  v.GetDuration("CATALOG_TIMEOUT"),
		},
		Session: SessionConfig{
			Secret: v.GetString("SESSION_SECRET"),
			TTL:    v.GetDuration("SESSION_TTL"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Catalog.PageSize <= 0 {
		return errors.New("CATALOG_PAGE_SIZE must be positive")
	}
	return nil
}
