package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"flightdb/internal/flight"
)

// SeqColumn is the ordinal column SQL backends store alongside each record
// so Load can return records in save order.
const SeqColumn = "seq"

// DefaultBatchSize is used when Config.BatchSize is not set.
const DefaultBatchSize = 200

// Columns returns SeqColumn followed by flight.Columns.
func Columns() []string {
	return append([]string{SeqColumn}, flight.Columns...)
}

// Rows converts db into positional rows aligned with Columns. seq starts at 1.
func Rows(db flight.Database) [][]any {
	rows := make([][]any, len(db))
	for i, r := range db {
		rows[i] = append([]any{int64(i + 1)}, r.Values()...)
	}
	return rows
}

// CopyFn inserts rows (aligned to columns) and reports how many were written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches splits rows into batches of batchSize and calls copyFn for each.
// It returns the total reported by copyFn and stops at the first error.
// Progress is logged at debug level after every batch.
func LoadBatches(
	ctx context.Context,
	log *zap.Logger,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var (
		total   int64
		batches int
		start   = time.Now()
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))
		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Warn("loader: copy failed", zap.Int("batch", batches+1), zap.Int64("total", total), zap.Error(err))
			return total, err
		}
		batches++
		log.Debug("loader: batch",
			zap.Int("batch", batches),
			zap.Int64("inserted", n),
			zap.Int64("total_inserted", total),
			zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
		)
	}
	return total, nil
}
