// Package config provides configuration management for the variant report service.
// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/variant-reports-service/internal/domain"
)

// LiteConfig is a simplified configuration for standalone operation.
// It stores everything in a local SQLite file and needs no config file.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for the SQLite database

	// HTTP settings
	Host     string
	HTTPPort int

	// Clinic service
	ClinicURL     string
	ClinicTimeout time.Duration

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".variant-reports")

	return &LiteConfig{
		DataDir:       dataDir,
		Host:          "127.0.0.1",
		HTTPPort:      8080,
		ClinicURL:     "http://localhost:8000/clinic/patients/",
		ClinicTimeout: 5 * time.Second,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("VARIANT_LITE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("VARIANT_LITE_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("VARIANT_LITE_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	if v := os.Getenv("VARIANT_LITE_CLINIC_URL"); v != "" {
		cfg.ClinicURL = v
	}
	if v := os.Getenv("VARIANT_LITE_CLINIC_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ClinicTimeout = d
		}
	}

	if v := os.Getenv("VARIANT_LITE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("VARIANT_LITE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// DatabasePath returns the path to the SQLite database.
func (c *LiteConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, "variant_reports.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// ToConfig expands the lite settings into a full service configuration
func (c *LiteConfig) ToConfig() *domain.Config {
	return &domain.Config{
		Environment: "development",
		Server: domain.ServerConfig{
			Host:            c.Host,
			Port:            c.HTTPPort,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			EnableMetrics:   true,
		},
		Database: domain.DatabaseConfig{
			Driver:     domain.DriverSQLite,
			SQLitePath: c.DatabasePath(),
		},
		Clinic: domain.ClinicConfig{
			BaseURL: c.ClinicURL,
			Timeout: c.ClinicTimeout,
			CircuitBreaker: domain.CircuitBreakerConfig{
				MaxRequests:      3,
				Interval:         60 * time.Second,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Logging: domain.LoggingConfig{
			Level:  c.LogLevel,
			Format: c.LogFormat,
			Output: "stderr",
		},
	}
}
