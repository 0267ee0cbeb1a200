// Package postgres stores a flight database in a Postgres table using pgx v5.
// Rows are written with COPY inside the save transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"flightdb/internal/flight"
	"flightdb/internal/storage"
	"flightdb/internal/storage/sqldb"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN       string // connection string for pgxpool
	Table     string // optionally schema-qualified, e.g. "public.flights"
	BatchSize int
	Logger    *zap.Logger
}

// Repository is a Postgres-backed storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if cfg.Table == "" {
		cfg.Table = storage.DefaultTable
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = storage.DefaultBatchSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Repository{pool: pool, cfg: cfg}, pool.Close, nil
}

// Save drops and recreates the table and COPYs every record in one
// transaction; Postgres DDL is transactional, so a failed save keeps the
// previous database.
func (r *Repository) Save(ctx context.Context, db flight.Database) error {
	create, err := sqldb.BuildCreateTableSQL(sqldb.Postgres, sqldb.FlightTable(sqldb.Postgres, r.cfg.Table))
	if err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, sqldb.DropTableSQL(sqldb.Postgres, r.cfg.Table)); err != nil {
		return fmt.Errorf("postgres: drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, create); err != nil {
		return fmt.Errorf("postgres: create table: %w", err)
	}

	ident := splitFQN(r.cfg.Table)
	total, err := storage.LoadBatches(ctx, r.cfg.Logger, storage.Columns(), storage.Rows(db), r.cfg.BatchSize,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return tx.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(rows))
		})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return fmt.Errorf("postgres: copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return fmt.Errorf("postgres: copy: %w", err)
	}
	if total != int64(len(db)) {
		return fmt.Errorf("postgres: copied %d of %d records", total, len(db))
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// Load reads the table in seq order.
func (r *Repository) Load(ctx context.Context) (flight.Database, error) {
	var n int
	if err := r.pool.QueryRow(ctx, sqldb.Postgres.ExistsSQL, r.cfg.Table).Scan(&n); err != nil {
		return nil, fmt.Errorf("postgres: check table %s: %w", r.cfg.Table, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: postgres table %s", storage.ErrNotFound, r.cfg.Table)
	}

	rows, err := r.pool.Query(ctx, sqldb.SelectSQL(sqldb.Postgres, r.cfg.Table))
	if err != nil {
		return nil, fmt.Errorf("postgres: select: %w", err)
	}
	defer rows.Close()

	db := flight.Database{}
	for rows.Next() {
		var (
			seq int64
			rec flight.Record
		)
		if err := rows.Scan(&seq, &rec.FlightID, &rec.Origin, &rec.Destination, &rec.Departure, &rec.Arrival, &rec.Price); err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		db = append(db, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	if err := db.Check(); err != nil {
		return nil, fmt.Errorf("corrupt database: %w", err)
	}
	return db, nil
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
