// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies shared by the server and the CLI: logging,
// the optional database and blob storage, the result cache store, and the
// outbound HTTP client.
package infrastructure

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/config"
	"github.com/JaimeStill/crediscope/pkg/database"
	"github.com/JaimeStill/crediscope/pkg/lifecycle"
	"github.com/JaimeStill/crediscope/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database and Storage are nil when their configuration is absent.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Storage    storage.System
	Results    cache.Store
	HTTPClient *http.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, NewLogger(&cfg.Logging, os.Stderr))
}

// NewWithLogger is New with an explicit logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{
		Lifecycle:  lifecycle.New(),
		Logger:     logger,
		HTTPClient: &http.Client{},
	}

	if cfg.Database.Enabled() {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	} else {
		logger.Warn("database not configured, history and prompt overrides disabled")
	}

	if cfg.Storage.Enabled() {
		blobs, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = blobs
	}

	results, err := cache.Open(&cfg.Cache, infra.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	infra.Results = results

	return infra, nil
}

// NewLogger builds the service logger from the logging configuration.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// DB returns the database connection pool, or nil when the database is disabled.
func (i *Infrastructure) DB() *sql.DB {
	if i.Database == nil {
		return nil
	}
	return i.Database.Connection()
}

type starter interface {
	Start(lc *lifecycle.Coordinator) error
}

// Start registers all configured systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if s, ok := i.Results.(starter); ok {
		if err := s.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("cache start failed: %w", err)
		}
	}
	return nil
}
