// Package storage defines the backend-agnostic contract for persisting a
// flight database and the factory that backends register with.
//
// Backends live in subpackages and register themselves in init; import
// flightdb/internal/storage/all to enable every built-in backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"flightdb/internal/flight"
)

// ErrNotFound is returned (wrapped) by Load when no database exists at the
// configured location.
var ErrNotFound = errors.New("database not found")

// DefaultTable is the table SQL backends use when Config.Table is empty.
const DefaultTable = "flights"

// Repository persists and restores a whole flight database.
//
// Save replaces whatever was stored before; there are no partial updates.
// Load returns records in the order they were saved and fails if any stored
// record is corrupt.
type Repository interface {
	Save(ctx context.Context, db flight.Database) error
	Load(ctx context.Context) (flight.Database, error)
	Close()
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind string
	// DSN is a connection string for SQL backends, or the file path /
	// s3://bucket/key location for the json backend.
	DSN   string
	Table string
	// BatchSize bounds rows per insert statement; 0 means backend default.
	BatchSize int
	Logger    *zap.Logger
}

// TableName returns Table or DefaultTable.
func (c Config) TableName() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}

// Log returns Logger or a no-op logger.
func (c Config) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
