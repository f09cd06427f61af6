// Package main provides the lightweight entry point for the variant reports
// service. It needs no database server and keeps its data in SQLite.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/app"
	"github.com/variant-reports-service/internal/config"
	"github.com/variant-reports-service/internal/logging"
)

var version = "dev"

func main() {
	// Load lightweight configuration
	liteCfg := config.LoadLiteConfig()
	if err := liteCfg.EnsureDataDir(); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	cfg := liteCfg.ToConfig()
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"data_dir":   liteCfg.DataDir,
		"port":       liteCfg.HTTPPort,
		"clinic_url": liteCfg.ClinicURL,
	}).Info("Starting variant reports service (lite)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.WithLogger(logger), app.WithVersion(version))
	if err != nil {
		logger.WithError(err).Fatal("Failed to start service")
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		logger.WithError(err).Error("Server failed")
		return
	}

	logger.Info("Variant reports service (lite) stopped")
}
