// Package backend selects and assembles the persistence layer from
// configuration.
package backend

import (
	"fmt"
	"log/slog"

	"grana/internal/config"
	"grana/internal/memory"
	"grana/internal/storage"
	"grana/internal/store"
)

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the assembled store and optional cleanup function.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Type represents the kind of persistence backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{SQLiteBackend, MemoryBackend}
}

// Factory creates stores based on configuration
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		logger: logger,
	}
}

// Create builds the store named by the application config.
func (f *Factory) Create(cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}

	backendType := Type(cfg.DataBackend)
	switch backendType {
	case SQLiteBackend:
		return f.createSQLite(cfg)
	case MemoryBackend:
		return f.createMemory()
	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}
}

func (f *Factory) createSQLite(cfg *config.Config) (*Result, error) {
	if cfg.SQLiteDBPath == "" {
		return nil, fmt.Errorf("SQLite database path is required for sqlite backend")
	}

	st, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	return &Result{
		Store:   st,
		Cleanup: st.Close,
	}, nil
}

func (f *Factory) createMemory() (*Result, error) {
	st := memory.New()

	f.logger.Info("Initialized memory backend")

	return &Result{
		Store:   st,
		Cleanup: nil, // nothing to release
	}, nil
}
