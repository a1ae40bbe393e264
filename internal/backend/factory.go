// Package backend selects and initializes the persistence backend from
// configuration.
package backend

import (
	"fmt"
	"log/slog"

	"billtrack/internal/config"
	"billtrack/internal/storage"
	"billtrack/internal/store"
)

// Result bundles an initialized store with its cleanup hook. Cleanup is
// nil for backends that hold no external resources.
type Result struct {
	Store   store.Store
	Cleanup func() error
}

// New initializes the store named by cfg.DataBackend.
func New(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil
	case "memory":
		logger.Info("Initialized memory backend")
		return &Result{Store: store.NewMemory()}, nil
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
