// Package common provides shared utilities for navdash
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Storage backend names.
const (
	BackendBadger    = "badger"
	BackendSurrealDB = "surrealdb"
	BackendPostgres  = "postgres"
)

// Config holds all configuration for navdash
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Cache       CacheConfig     `toml:"cache"`
	Logging     LoggingConfig   `toml:"logging"`
	Schemes     []SchemeEntry   `toml:"schemes"`
	Accounts    []AccountConfig `toml:"accounts"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string  `toml:"host"`
	Port           int     `toml:"port"`
	RequestTimeout string  `toml:"request_timeout"`
	RateLimit      float64 `toml:"rate_limit"` // analytics requests per second, 0 disables
	RateBurst      int     `toml:"rate_burst"`
}

// GetRequestTimeout parses and returns the per-request timeout
func (c *ServerConfig) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// StorageConfig selects the record store backend and holds its settings.
type StorageConfig struct {
	Backend   string          `toml:"backend"` // "badger" (default), "surrealdb", "postgres"
	Badger    BadgerConfig    `toml:"badger"`
	SurrealDB SurrealDBConfig `toml:"surrealdb"`
	Postgres  PostgresConfig  `toml:"postgres"`
	SeedFile  string          `toml:"seed_file"` // optional JSON records loaded at startup
}

// BadgerConfig holds the embedded store location.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// SurrealDBConfig holds SurrealDB connection settings.
type SurrealDBConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// PostgresConfig holds Postgres connection settings.
type PostgresConfig struct {
	DSN      string `toml:"dsn"`
	MaxConns int32  `toml:"max_conns"`
}

// CacheConfig controls the in-process record cache.
type CacheConfig struct {
	Enabled         bool   `toml:"enabled"`
	RefreshSchedule string `toml:"refresh_schedule"` // cron spec with seconds field; empty = never
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// SchemeEntry is one [[schemes]] table of the registry configuration.
type SchemeEntry struct {
	Name       string   `toml:"name"`
	Kind       string   `toml:"kind"` // "live", "frozen", "composite"
	SystemTag  string   `toml:"system_tag"`
	Active     bool     `toml:"active"`
	StartDate  string   `toml:"start_date"` // optional cutoff, YYYY-MM-DD
	Components []string `toml:"components"` // composite only, oldest first
}

// AccountConfig lists the schemes an account sees, in display order.
type AccountConfig struct {
	ID      string   `toml:"id"`
	Schemes []string `toml:"schemes"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			RequestTimeout: "60s",
			RateLimit:      20,
			RateBurst:      40,
		},
		Storage: StorageConfig{
			Backend: BackendBadger,
			Badger:  BadgerConfig{Path: "data/records"},
			SurrealDB: SurrealDBConfig{
				Address:   "ws://localhost:8000/rpc",
				Username:  "root",
				Password:  "root",
				Namespace: "navdash",
				Database:  "navdash",
			},
			Postgres: PostgresConfig{MaxConns: 8},
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// .env is optional and never overrides variables already set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validateBackend(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("NAVDASH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("NAVDASH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("NAVDASH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("NAVDASH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("NAVDASH_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if path := os.Getenv("NAVDASH_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	if addr := os.Getenv("NAVDASH_SURREAL_ADDRESS"); addr != "" {
		config.Storage.SurrealDB.Address = addr
	}

	if dsn := os.Getenv("NAVDASH_POSTGRES_DSN"); dsn != "" {
		config.Storage.Postgres.DSN = dsn
	}

	if seed := os.Getenv("NAVDASH_SEED_FILE"); seed != "" {
		config.Storage.SeedFile = seed
	}

	if spec, ok := os.LookupEnv("NAVDASH_CACHE_REFRESH"); ok {
		config.Cache.RefreshSchedule = spec
	}
}

func validateBackend(config *Config) error {
	switch config.Storage.Backend {
	case "":
		config.Storage.Backend = BackendBadger
	case BackendBadger, BackendSurrealDB, BackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend: %s (supported: badger, surrealdb, postgres)", config.Storage.Backend)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// StorageAddress describes the configured backend for banners and logs.
func (c *Config) StorageAddress() string {
	switch c.Storage.Backend {
	case BackendSurrealDB:
		return c.Storage.SurrealDB.Address
	case BackendPostgres:
		return "postgres"
	default:
		return c.Storage.Badger.Path
	}
}
