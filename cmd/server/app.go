package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dfcarvalho/tarefas-api/internal/api"
	"github.com/dfcarvalho/tarefas-api/internal/config"
	"github.com/dfcarvalho/tarefas-api/internal/events"
	"github.com/dfcarvalho/tarefas-api/internal/platform/memory"
	"github.com/dfcarvalho/tarefas-api/internal/platform/postgres"
	"github.com/dfcarvalho/tarefas-api/internal/service"
	"github.com/dfcarvalho/tarefas-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB // nil when running on the in-memory store

	// Stores (using interfaces for proper abstraction)
	taskStore store.TaskStore

	// Service interfaces
	taskService service.TaskService

	// Event system
	eventEmitter events.EventEmitter
	wsHub        *api.WSHub
}

// newApplication creates a new application instance with all dependencies
// initialized. db may be nil, in which case tasks are kept in memory and
// lost on restart.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize the task store
	if db != nil {
		app.taskStore = postgres.NewPostgresTaskStore(db, logger)
		logger.Info("Using PostgreSQL task store")
	} else {
		app.taskStore = memory.NewMemoryTaskStore(logger)
		logger.Warn("No database configured, using in-memory task store",
			"consequence", "tasks will not survive restarts")
	}

	// Initialize the event emitter and the websocket feed, which receives
	// every task lifecycle event
	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter
	app.wsHub = api.NewWSHub(logger)
	emitter.RegisterHandler(app.wsHub)

	// Initialize the task service
	taskRepoAdapter := service.NewTaskRepositoryAdapter(app.taskStore, app.db)
	taskService, err := service.NewTaskService(taskRepoAdapter, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	app.taskService = taskService

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	// Start the HTTP server
	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
