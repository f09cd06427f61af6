package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/variant-reports-service/internal/database"
	"github.com/variant-reports-service/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v      *viper.Viper
	config *domain.Config
}

// NewManager creates a new configuration manager. configFile may be empty,
// in which case config.yaml is searched for in the default locations.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{v: viper.New()}
	if configFile != "" {
		m.v.SetConfigFile(configFile)
	}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults
func (m *Manager) loadConfig() error {
	v := m.v

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/variant-reports/")

	// VARIANT_REPORTS_DATABASE_HOST overrides database.host
	v.SetEnvPrefix("VARIANT_REPORTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.enable_metrics", true)

	// Database defaults
	v.SetDefault("database.driver", domain.DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "variant_reports")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "30m")
	v.SetDefault("database.sqlite_path", "variant_reports.db")
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("database.auto_migrate", false)

	// Clinic defaults
	v.SetDefault("clinic.base_url", "http://gateway-service/clinic/patients/")
	v.SetDefault("clinic.timeout", "5s")
	v.SetDefault("clinic.rate_limit", 0)
	v.SetDefault("clinic.circuit_breaker.max_requests", 3)
	v.SetDefault("clinic.circuit_breaker.interval", "60s")
	v.SetDefault("clinic.circuit_breaker.timeout", "30s")
	v.SetDefault("clinic.circuit_breaker.failure_threshold", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.filename", "")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// GetClinicConfig returns the clinic service configuration
func (m *Manager) GetClinicConfig() *domain.ClinicConfig {
	return &m.config.Clinic
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetLoggingConfig returns logging configuration
func (m *Manager) GetLoggingConfig() *domain.LoggingConfig {
	return &m.config.Logging
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Database.Driver {
	case domain.DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Username == "" {
			return fmt.Errorf("database username is required")
		}
	case domain.DriverSQLite:
		if config.Database.SQLitePath == "" {
			return fmt.Errorf("database sqlite_path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", config.Database.Driver)
	}

	if err := validateClinic(&config.Clinic); err != nil {
		return err
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

func validateClinic(c *domain.ClinicConfig) error {
	if c.BaseURL == "" {
		return fmt.Errorf("clinic base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid clinic base URL: %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("clinic timeout must be positive, got %s", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("clinic rate limit must not be negative, got %d", c.RateLimit)
	}
	return nil
}

// GetDatabaseConnectionString returns a key/value Postgres DSN
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetDatabaseURL returns the Postgres URL form used by golang-migrate
func (m *Manager) GetDatabaseURL() string {
	return database.URL(m.config.Database)
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}
