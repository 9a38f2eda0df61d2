package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/phrazzld/bookshelf-api/internal/config"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
	"github.com/phrazzld/bookshelf-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Running the binary without a
// subcommand serves the API.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookshelf-api",
		Short:         "Reading list JSON API",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newMigrateCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations against database.url",
	}

	for _, sub := range []struct{ use, short string }{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the most recent migration"},
		{"status", "Print the status of every migration"},
		{"version", "Print the current schema version"},
	} {
		command := sub.use
		migrate.AddCommand(&cobra.Command{
			Use:   command,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), command)
			},
		})
	}
	return migrate
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"environment", cfg.Server.Environment,
		"database_driver", cfg.Database.Driver)

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	return app.listenAndServe(ctx)
}

func runMigrate(ctx context.Context, command string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations require database.driver=%s, got %q",
			config.DriverPostgres, cfg.Database.Driver)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return postgres.Migrate(ctx, db, command, log)
}
