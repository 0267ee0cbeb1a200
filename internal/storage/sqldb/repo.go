package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"flightdb/internal/flight"
	"flightdb/internal/storage"
)

// BulkFn writes one batch of rows inside the save transaction. Backends with
// a native bulk path (e.g. SQL Server bulk copy) provide one; the default is
// a multi-row INSERT.
type BulkFn func(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error)

// Repository saves and loads a flight database through database/sql.
type Repository struct {
	DB        *sql.DB
	Dialect   Dialect
	Table     string
	BatchSize int
	Log       *zap.Logger
	Bulk      BulkFn
}

// New returns a Repository for db using the table, batch size and logger
// from cfg.
func New(db *sql.DB, d Dialect, cfg storage.Config) *Repository {
	bs := cfg.BatchSize
	if bs <= 0 {
		bs = storage.DefaultBatchSize
	}
	return &Repository{DB: db, Dialect: d, Table: cfg.TableName(), BatchSize: bs, Log: cfg.Log()}
}

// Save drops and recreates the table, then inserts every record with its seq
// ordinal, all in one transaction where the dialect allows transactional
// DDL.
func (r *Repository) Save(ctx context.Context, db flight.Database) error {
	create, err := BuildCreateTableSQL(r.Dialect, FlightTable(r.Dialect, r.Table))
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", r.Dialect.Name, err)
	}
	rollback := func() { _ = tx.Rollback() }

	if _, err := tx.ExecContext(ctx, DropTableSQL(r.Dialect, r.Table)); err != nil {
		rollback()
		return fmt.Errorf("%s: drop table: %w", r.Dialect.Name, err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		rollback()
		return fmt.Errorf("%s: create table: %w", r.Dialect.Name, err)
	}

	bulk := r.Bulk
	if bulk == nil {
		bulk = r.insert
	}
	total, err := storage.LoadBatches(ctx, r.Log, storage.Columns(), storage.Rows(db), r.BatchSize,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return bulk(ctx, tx, r.Table, columns, rows)
		})
	if err != nil {
		rollback()
		return fmt.Errorf("%s: insert: %w", r.Dialect.Name, err)
	}
	if total != int64(len(db)) {
		rollback()
		return fmt.Errorf("%s: inserted %d of %d records", r.Dialect.Name, total, len(db))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", r.Dialect.Name, err)
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d has %d values for %d columns", i, len(row), len(columns))
		}
		args = append(args, row...)
	}
	res, err := tx.ExecContext(ctx, InsertSQL(r.Dialect, table, columns, len(rows)), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return int64(len(rows)), nil
	}
	return n, nil
}

// Load reads the table in seq order. A missing table is storage.ErrNotFound;
// a record whose timestamps no longer parse fails the load.
func (r *Repository) Load(ctx context.Context) (flight.Database, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, r.Dialect.ExistsSQL, r.Dialect.existsArg(r.Table)).Scan(&n); err != nil {
		return nil, fmt.Errorf("%s: check table %s: %w", r.Dialect.Name, r.Table, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s table %s", storage.ErrNotFound, r.Dialect.Name, r.Table)
	}

	rows, err := r.DB.QueryContext(ctx, SelectSQL(r.Dialect, r.Table))
	if err != nil {
		return nil, fmt.Errorf("%s: select: %w", r.Dialect.Name, err)
	}
	defer rows.Close()

	db := flight.Database{}
	for rows.Next() {
		var (
			seq int64
			rec flight.Record
		)
		if err := rows.Scan(&seq, &rec.FlightID, &rec.Origin, &rec.Destination, &rec.Departure, &rec.Arrival, &rec.Price); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", r.Dialect.Name, err)
		}
		db = append(db, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", r.Dialect.Name, err)
	}
	if err := db.Check(); err != nil {
		return nil, fmt.Errorf("corrupt database: %w", err)
	}
	return db, nil
}

// Close closes the underlying pool.
func (r *Repository) Close() { _ = r.DB.Close() }
