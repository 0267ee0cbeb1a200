// Package mysql stores a flight database in a MySQL table using
// go-sql-driver/mysql and batched multi-row INSERTs.
//
// MySQL commits DDL implicitly, so the drop and create in Save are not
// rolled back if the insert fails.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	driver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"flightdb/internal/storage"
	"flightdb/internal/storage/sqldb"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN       string // e.g. "user:pass@tcp(host:3306)/flights"
	Table     string
	BatchSize int
	Logger    *zap.Logger
}

// Repository is a MySQL-backed storage.Repository.
type Repository struct {
	*sqldb.Repository
}

// parseDSN validates dsn and pins the options the repository relies on.
func parseDSN(dsn string) (*driver.Config, error) {
	c, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	c.MultiStatements = false
	if c.Params == nil {
		c.Params = map[string]string{}
	}
	if _, ok := c.Params["charset"]; !ok {
		c.Params["charset"] = "utf8mb4"
	}
	return c, nil
}

// NewRepository constructs a Repository and returns a Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	c, err := parseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	conn, err := driver.NewConnector(c)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(conn)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql ping: %w", err)
	}
	r := sqldb.New(db, sqldb.MySQL, storage.Config{Table: cfg.Table, BatchSize: cfg.BatchSize, Logger: cfg.Logger})
	return &Repository{Repository: r}, r.Close, nil
}
