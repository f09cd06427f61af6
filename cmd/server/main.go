package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/variant-reports-service/internal/app"
	"github.com/variant-reports-service/internal/config"
	"github.com/variant-reports-service/internal/database"
	"github.com/variant-reports-service/internal/domain"
	"github.com/variant-reports-service/internal/logging"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "variant-reports",
		Short:         "Gene, variant and patient report API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yaml")

	rootCmd.AddCommand(serveCmd(&configFile))
	rootCmd.AddCommand(migrateCmd(&configFile))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration and builds the logger
func loadConfig(configFile string) (*config.Manager, *logrus.Logger, error) {
	configManager, err := config.NewManager(configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := configManager.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logger, err := logging.New(*configManager.GetLoggingConfig())
	if err != nil {
		return nil, nil, err
	}
	return configManager, logger, nil
}

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			configManager, logger, err := loadConfig(*configFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := configManager.GetConfig()
			logger.WithFields(logrus.Fields{
				"host":        cfg.Server.Host,
				"port":        cfg.Server.Port,
				"environment": cfg.Environment,
				"version":     version,
			}).Info("Starting variant reports service")

			a, err := app.New(ctx, cfg, app.WithLogger(logger), app.WithVersion(version))
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Run(ctx); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}

			logger.Info("Server stopped")
			return nil
		},
	}
}

func migrateCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationRunner(cmd.Context(), *configFile, func(ctx context.Context, runner *database.MigrationRunner) error {
				return runner.Up(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationRunner(cmd.Context(), *configFile, func(ctx context.Context, runner *database.MigrationRunner) error {
				return runner.Down(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationRunner(cmd.Context(), *configFile, func(ctx context.Context, runner *database.MigrationRunner) error {
				v, dirty, err := runner.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
				return nil
			})
		},
	})

	return cmd
}

func withMigrationRunner(ctx context.Context, configFile string, fn func(context.Context, *database.MigrationRunner) error) error {
	configManager, logger, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	dbCfg := configManager.GetDatabaseConfig()
	if dbCfg.Driver != domain.DriverPostgres {
		return fmt.Errorf("migrations apply to the postgres driver only; %s creates its schema on open", dbCfg.Driver)
	}

	runner, err := database.NewMigrationRunner(configManager.GetDatabaseURL(), dbCfg.MigrationsPath, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	return fn(ctx, runner)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
