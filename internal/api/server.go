package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/domain"
	"github.com/variant-reports-service/internal/metrics"
	"github.com/variant-reports-service/internal/middleware"
	"github.com/variant-reports-service/internal/service"
)

// defaultShutdownTimeout bounds the drain of in-flight requests
const defaultShutdownTimeout = 30 * time.Second

// BreakerReporter exposes the state of an outbound circuit breaker
type BreakerReporter interface {
	BreakerState() string
}

// Dependencies are the collaborators the HTTP layer serves
type Dependencies struct {
	Genes    *service.GeneService
	Variants *service.VariantService
	Reports  *service.ReportService
	Health   domain.HealthChecker
	Clinic   BreakerReporter  // optional
	Metrics  *metrics.Metrics // nil disables /metrics
	Logger   *logrus.Logger
	Version  string
}

// Server represents the HTTP server
type Server struct {
	config   domain.ServerConfig
	router   *gin.Engine
	server   *http.Server
	genes    *service.GeneService
	variants *service.VariantService
	reports  *service.ReportService
	health   domain.HealthChecker
	clinic   BreakerReporter
	metrics  *metrics.Metrics
	logger   *logrus.Logger
	version  string
}

// NewServer creates a new HTTP server instance
func NewServer(config domain.ServerConfig, deps Dependencies) *Server {
	router := gin.New()
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AccessLogger(deps.Logger))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	s := &Server{
		config:   config,
		router:   router,
		genes:    deps.Genes,
		variants: deps.Variants,
		reports:  deps.Reports,
		health:   deps.Health,
		clinic:   deps.Clinic,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		version:  deps.Version,
	}

	s.setupRoutes()

	return s
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.WithField("timeout", timeout.String()).Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	genes := s.router.Group("/genes")
	{
		genes.GET("/", s.handleListGenes)
		genes.POST("/", s.handleCreateGene)
		genes.GET("/:id/", s.handleGetGene)
		genes.PUT("/:id/", s.handleUpdateGene)
		genes.DELETE("/:id/", s.handleDeleteGene)
	}

	variants := s.router.Group("/variants")
	{
		variants.GET("/", s.handleListVariants)
		variants.POST("/", s.handleCreateVariant)
		variants.GET("/:id/", s.handleGetVariant)
		variants.PUT("/:id/", s.handleUpdateVariant)
		variants.DELETE("/:id/", s.handleDeleteVariant)
	}

	reports := s.router.Group("/reports")
	{
		reports.GET("/", s.handleListReports)
		reports.POST("/", s.handleCreateReport)
		reports.GET("/patient/:patientId/", s.handleListPatientReports)
		reports.GET("/:id/", s.handleGetReport)
		reports.DELETE("/:id/", s.handleDeleteReport)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	})
}

// handleHealth reports liveness and store reachability
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   s.version,
	}
	if s.clinic != nil {
		body["clinic_breaker"] = s.clinic.BreakerState()
	}

	if err := s.health.Health(ctx); err != nil {
		s.logger.WithError(err).Warn("Health check failed")
		body["status"] = "unhealthy"
		body["error"] = "store unreachable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
