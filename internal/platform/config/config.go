// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles harvester-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, then validates cross-field rules with the platform validator.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - Fail Fast: Missing credentials or schedule abort startup before any sweep.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
	"github.com/taibuivan/yomira-harvester/internal/platform/scheduler"
	"github.com/taibuivan/yomira-harvester/internal/platform/validate"
)

// # Enumerations

// State backends for the cursor and the session token.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Record kinds stored alongside every harvested record.
const (
	KindCosplay = "cosplay"
	KindStar    = "star"
)

// # Configuration Schema

// Config holds all runtime configuration for the harvester.
type Config struct {

	// Process settings
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// Record store (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Durable state: cursor + session token
	StateBackend string `env:"STATE_BACKEND" envDefault:"file"`
	DataDir      string `env:"DATA_DIR"      envDefault:"./data"`
	RedisURL     string `env:"REDIS_URL"`

	// Remote catalog credentials
	Username string `env:"PICACOMIC_USER,required"`
	Password string `env:"PICACOMIC_PASS,required"`

	// Remote catalog
	CatalogBaseURL  string        `env:"CATALOG_BASE_URL"   envDefault:"https://picaapi.picacomic.com/"`
	CatalogCategory string        `env:"CATALOG_CATEGORY"   envDefault:"Cosplay"`
	CatalogSort     string        `env:"CATALOG_SORT"       envDefault:"dd"`
	APIKey          string        `env:"CATALOG_API_KEY"`
	APISecret       string        `env:"CATALOG_API_SECRET"`
	ProxyURL        string        `env:"PROXY_URL"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	RequestRPS      float64       `env:"REQUEST_RPS"     envDefault:"2"`
	RequestBurst    int           `env:"REQUEST_BURST"   envDefault:"1"`

	// Trigger
	CronExpression string `env:"CRON_EXPRESSION,required"`
	CronTimezone   string `env:"CRON_TIMEZONE" envDefault:"Asia/Shanghai"`

	// Record mapping
	StripTag   string `env:"STRIP_TAG"   envDefault:"COSPLAY"`
	RecordKind string `env:"RECORD_KIND" envDefault:"cosplay"`

	// Dedup gateway: number of known identities kept in memory
	KnownCacheSize int `env:"KNOWN_CACHE_SIZE" envDefault:"4096"`

	// Operator surface (health, status, metrics). Empty disables it.
	OpsAddr string `env:"OPS_ADDR" envDefault:":9090"`

	// OpsToken guards POST /sweep. Empty leaves the manual trigger unmounted.
	OpsToken string `env:"OPS_TOKEN"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Map environment variables onto the struct.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges and cross-field rules.
func (c *Config) Validate() error {
	v := &validate.Validator{}

	v.OneOf("STATE_BACKEND", c.StateBackend, BackendFile, BackendRedis).
		Custom("REDIS_URL", c.StateBackend == BackendRedis && c.RedisURL == "", "Required by the redis state backend").
		Required("DATA_DIR", c.DataDir).
		URL("CATALOG_BASE_URL", c.CatalogBaseURL).
		Required("CATALOG_CATEGORY", c.CatalogCategory).
		Custom("CATALOG_API_SECRET", (c.APIKey == "") != (c.APISecret == ""), "CATALOG_API_KEY and CATALOG_API_SECRET must be set together").
		PositiveDuration("REQUEST_TIMEOUT", c.RequestTimeout).
		Positive("REQUEST_RPS", c.RequestRPS).
		Range("REQUEST_BURST", c.RequestBurst, 1, 100).
		Required("CRON_EXPRESSION", c.CronExpression).
		OneOf("RECORD_KIND", c.RecordKind, KindCosplay, KindStar).
		Range("KNOWN_CACHE_SIZE", c.KnownCacheSize, 1, 1<<20)

	if c.ProxyURL != "" {
		v.URL("PROXY_URL", c.ProxyURL)
	}

	if c.CronExpression != "" {
		if _, err := scheduler.ParseExpression(c.CronExpression); err != nil {
			v.Custom("CRON_EXPRESSION", true, "Invalid cron expression")
		}
	}

	if _, err := time.LoadLocation(c.CronTimezone); err != nil {
		v.Custom("CRON_TIMEZONE", true, "Unknown time zone")
	}

	return v.Err()
}

// # Derived Values

// CursorPath is the cursor state file used by the file backend.
func (c *Config) CursorPath() string {
	return filepath.Join(c.DataDir, constants.CursorFileName)
}

// TokenPath is the session token file used by the file backend.
func (c *Config) TokenPath() string {
	return filepath.Join(c.DataDir, constants.TokenFileName)
}

// UsesRedis reports whether a Redis client must be opened.
func (c *Config) UsesRedis() bool {
	return c.StateBackend == BackendRedis || c.RedisURL != ""
}

// IsProduction reports whether the harvester is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
