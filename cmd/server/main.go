// Package main implements the entry point for the tarefas API server,
// a task management service exposing CRUD endpoints and a live change
// feed over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/dfcarvalho/tarefas-api/internal/config"
	"github.com/dfcarvalho/tarefas-api/internal/platform/logger"
	"github.com/joho/godotenv"

	// Register the pgx database/sql driver used by sql.Open("pgx", ...)
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	migrateCmd := flag.String(
		"migrate",
		"",
		"Run database migrations (up|down|reset|status|version|create) and exit",
	)
	migrationName := flag.String(
		"migration-name",
		"",
		"Name for the new migration file (used with -migrate create)",
	)
	flag.Parse()

	// Load .env when present. Missing files are fine: production
	// deployments configure the environment directly.
	_ = godotenv.Load()

	if err := run(*migrateCmd, *migrationName); err != nil {
		log.Fatalf("tarefas-api failed: %v", err)
	}
}

// run loads configuration, sets up logging and either executes the requested
// migration command or starts the HTTP server.
func run(migrateCmd, migrationName string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_configured", cfg.Database.URL != "")

	if migrateCmd != "" {
		return runMigrations(cfg, migrateCmd, migrationName)
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(context.Background())
}
