// Package sqlite stores a flight database in a SQLite file using the pure-Go
// modernc driver. Inserts run in one transaction of batched multi-row
// statements.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"flightdb/internal/storage"
	"flightdb/internal/storage/sqldb"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a file path or URI, e.g. "flights.db" or
	// "file:flights.db?_pragma=busy_timeout(5000)". ":memory:" works for
	// tests.
	DSN       string
	Table     string
	BatchSize int
	Logger    *zap.Logger
}

// Repository is a SQLite-backed storage.Repository.
type Repository struct {
	*sqldb.Repository
}

// NewRepository opens the database and returns a Repository plus a Close
// function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection: a single writer, and :memory: stays one database.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	r := sqldb.New(db, sqldb.SQLite, storage.Config{Table: cfg.Table, BatchSize: cfg.BatchSize, Logger: cfg.Logger})
	return &Repository{Repository: r}, r.Close, nil
}
