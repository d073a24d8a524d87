// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Archive ArchiveConfig `yaml:"archive"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// MaxUploadBytes caps the size of a CSV upload body.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// IngestConfig configures CSV normalization.
type IngestConfig struct {
	// BatchSize is the number of rows normalized between cancellation
	// checks. It never changes the resulting dataset.
	BatchSize           int `yaml:"batch_size"`
	DefaultRequests     int `yaml:"default_requests"`
	DefaultMonthlyQuota int `yaml:"default_monthly_quota"`
}

// ArchiveConfig configures the on-disk dataset archive. When disabled the
// dashboard starts empty after every restart.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"` // "sqlite"
	DSN     string `yaml:"dsn"`
}

// AuthConfig configures optional access-token protection for the API.
// TokenHash is a bcrypt hash of the shared token.
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	TokenHash string `yaml:"token_hash,omitempty"`
	Header    string `yaml:"header"` // Header carrying the token (default: X-Access-Token)
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	USAGELENS_SERVER_HOST      - Server host (default: 0.0.0.0)
//	USAGELENS_SERVER_PORT      - Server port (default: 8080)
//	USAGELENS_INGEST_BATCH     - Rows per ingest batch (default: 1000)
//	USAGELENS_ARCHIVE_ENABLED  - Persist uploads to disk (default: true)
//	USAGELENS_ARCHIVE_DSN      - Archive database path (default: usagelens.db)
//	USAGELENS_AUTH_ENABLED     - Require an access token (default: false)
//	USAGELENS_AUTH_TOKEN_HASH  - bcrypt hash of the access token
//	USAGELENS_LOG_LEVEL        - Log level: debug, info, warn, error (default: info)
//	USAGELENS_LOG_FORMAT       - Log format: json or console (default: json)
//	USAGELENS_METRICS_ENABLED  - Enable /metrics endpoint (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables. A usable config always exists because every field has a default.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies USAGELENS_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("USAGELENS_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("USAGELENS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("USAGELENS_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("USAGELENS_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if v := os.Getenv("USAGELENS_SERVER_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxUploadBytes = n
		}
	}

	// Ingest configuration
	if v := os.Getenv("USAGELENS_INGEST_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.BatchSize = n
		}
	}
	if v := os.Getenv("USAGELENS_INGEST_DEFAULT_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.DefaultRequests = n
		}
	}
	if v := os.Getenv("USAGELENS_INGEST_DEFAULT_QUOTA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.DefaultMonthlyQuota = n
		}
	}

	// Archive configuration
	if v := os.Getenv("USAGELENS_ARCHIVE_ENABLED"); v != "" {
		cfg.Archive.Enabled = parseBool(v)
	} else if os.Getenv("USAGELENS_ARCHIVE_DSN") != "" {
		cfg.Archive.Enabled = true
	}
	if v := os.Getenv("USAGELENS_ARCHIVE_DRIVER"); v != "" {
		cfg.Archive.Driver = v
	}
	if v := os.Getenv("USAGELENS_ARCHIVE_DSN"); v != "" {
		cfg.Archive.DSN = v
	}

	// Auth configuration
	if v := os.Getenv("USAGELENS_AUTH_ENABLED"); v != "" {
		cfg.Auth.Enabled = parseBool(v)
	}
	if v := os.Getenv("USAGELENS_AUTH_TOKEN_HASH"); v != "" {
		cfg.Auth.TokenHash = v
	}
	if v := os.Getenv("USAGELENS_AUTH_HEADER"); v != "" {
		cfg.Auth.Header = v
	}

	// Logging configuration
	if v := os.Getenv("USAGELENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("USAGELENS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("USAGELENS_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("USAGELENS_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 64 << 20 // 64 MiB
	}

	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 1000
	}
	if cfg.Ingest.DefaultRequests == 0 {
		cfg.Ingest.DefaultRequests = 1
	}
	if cfg.Ingest.DefaultMonthlyQuota == 0 {
		cfg.Ingest.DefaultMonthlyQuota = 300
	}

	if cfg.Archive.Driver == "" {
		cfg.Archive.Driver = "sqlite"
	}
	if cfg.Archive.DSN == "" {
		cfg.Archive.DSN = "usagelens.db"
	}

	if cfg.Auth.Header == "" {
		cfg.Auth.Header = "X-Access-Token"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", cfg.Server.Port)
	}
	if cfg.Ingest.BatchSize < 1 {
		return fmt.Errorf("ingest.batch_size must be positive, got %d", cfg.Ingest.BatchSize)
	}
	if cfg.Ingest.DefaultRequests < 0 {
		return fmt.Errorf("ingest.default_requests must not be negative")
	}
	if cfg.Ingest.DefaultMonthlyQuota < 0 {
		return fmt.Errorf("ingest.default_monthly_quota must not be negative")
	}

	if cfg.Archive.Enabled && cfg.Archive.Driver != "sqlite" {
		return fmt.Errorf("archive.driver must be 'sqlite', got %q", cfg.Archive.Driver)
	}

	if cfg.Auth.Enabled && cfg.Auth.TokenHash == "" {
		return fmt.Errorf("auth.token_hash is required when auth.enabled is true")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}
