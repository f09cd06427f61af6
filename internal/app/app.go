// Package app assembles the store, clinic client, services and HTTP server
// from a configuration. Both server binaries start through it.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/api"
	"github.com/variant-reports-service/internal/database"
	"github.com/variant-reports-service/internal/domain"
	"github.com/variant-reports-service/internal/metrics"
	"github.com/variant-reports-service/internal/repository"
	"github.com/variant-reports-service/internal/service"
	"github.com/variant-reports-service/pkg/clinic"
	"github.com/variant-reports-service/pkg/schema"
)

// store is the entity store behind the repositories
type store interface {
	domain.Transactor
	domain.HealthChecker
}

// App owns every long-lived component of a running service
type App struct {
	config   *domain.Config
	logger   *logrus.Logger
	registry *prometheus.Registry
	version  string

	store    store
	closers  []func()
	metrics  *metrics.Metrics
	verifier *clinic.Client
	server   *api.Server
}

// Option is a functional option for App
type Option func(*App) error

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithRegistry sets the Prometheus registry, mainly for tests
func WithRegistry(registry *prometheus.Registry) Option {
	return func(a *App) error {
		a.registry = registry
		return nil
	}
}

// WithVersion sets the version reported by /health
func WithVersion(version string) Option {
	return func(a *App) error {
		a.version = version
		return nil
	}
}

// New opens the configured store and wires the service around it
func New(ctx context.Context, cfg *domain.Config, opts ...Option) (*App, error) {
	a := &App{
		config:  cfg,
		logger:  logrus.New(),
		version: "dev",
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	// Set Gin mode based on log level
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Server.EnableMetrics {
		var err error
		if a.registry != nil {
			a.metrics, err = metrics.New(a.registry)
		} else {
			a.metrics, err = metrics.NewDefault()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	var (
		genes    domain.GeneRepository
		variants domain.VariantRepository
		reports  domain.ReportRepository
	)

	switch cfg.Database.Driver {
	case domain.DriverPostgres:
		db, err := a.openPostgres(ctx)
		if err != nil {
			return nil, err
		}
		a.store = db
		a.closers = append(a.closers, db.Close)
		genes = repository.NewGeneRepository(db, a.logger)
		variants = repository.NewVariantRepository(db, a.logger)
		reports = repository.NewReportRepository(db, a.logger)

	case domain.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Database.SQLitePath, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		a.store = db
		a.closers = append(a.closers, func() { _ = db.Close() })
		genes = repository.NewSQLiteGeneRepository(db, a.logger)
		variants = repository.NewSQLiteVariantRepository(db, a.logger)
		reports = repository.NewSQLiteReportRepository(db, a.logger)

	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}

	a.verifier = clinic.NewClient(cfg.Clinic, a.metrics, a.logger)
	validator := schema.NewValidator()

	a.server = api.NewServer(cfg.Server, api.Dependencies{
		Genes:    service.NewGeneService(genes, validator, a.logger),
		Variants: service.NewVariantService(genes, variants, validator, a.logger),
		Reports:  service.NewReportService(reports, variants, a.store, a.verifier, validator, a.metrics, a.logger),
		Health:   a.store,
		Clinic:   a.verifier,
		Metrics:  a.metrics,
		Logger:   a.logger,
		Version:  a.version,
	})

	a.logger.WithFields(logrus.Fields{
		"driver":     cfg.Database.Driver,
		"clinic_url": cfg.Clinic.BaseURL,
		"metrics":    a.metrics != nil,
	}).Info("Service assembled")

	return a, nil
}

func (a *App) openPostgres(ctx context.Context) (*database.DB, error) {
	dbCfg := a.config.Database

	if dbCfg.AutoMigrate {
		runner, err := database.NewMigrationRunner(database.URL(dbCfg), dbCfg.MigrationsPath, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create migration runner: %w", err)
		}
		err = runner.Up(ctx)
		_ = runner.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	db, err := database.NewConnection(ctx, database.ConfigFromDomain(dbCfg), a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Server returns the HTTP server
func (a *App) Server() *api.Server {
	return a.server
}

// Run serves HTTP until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	return a.server.Start(ctx)
}

// Close releases the store
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
