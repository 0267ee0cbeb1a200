// Package ingest runs the validator over whole sources and folds the
// per-source results into one batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"flightdb/internal/datasource"
	"flightdb/internal/datasource/file"
	"flightdb/internal/flight"
	"flightdb/internal/parser/csv"
	"flightdb/internal/validator"
)

// ErrSourcesFailed is returned (wrapped) by ParseSources when at least one
// source could not be read. The batch returned alongside it still holds the
// results of every source that could.
var ErrSourcesFailed = errors.New("sources failed")

// Workers bounds how many sources ParseSources reads at once.
var Workers = runtime.GOMAXPROCS(0)

// Counts tallies line classifications. Lines is every line read, including
// blank ones.
type Counts struct {
	Lines    int
	Accepted int
	Rejected int
	Comments int
	Skipped  int
}

func (c *Counts) add(o Counts) {
	c.Lines += o.Lines
	c.Accepted += o.Accepted
	c.Rejected += o.Rejected
	c.Comments += o.Comments
	c.Skipped += o.Skipped
}

// SourceFailure records a source that could not be read.
type SourceFailure struct {
	Source string
	Err    error
}

// Batch is the result of validating one or more sources.
type Batch struct {
	// Records are the accepted flights in input order.
	Records flight.Database
	// Log holds rejections and comment notices in input order, ready for the
	// rejection log.
	Log      []validator.Rejection
	Counts   Counts
	Sources  int
	Failures []SourceFailure
}

// Rejections returns only the entries of Log that are data-quality
// failures, leaving out comment notices.
func (b Batch) Rejections() []validator.Rejection {
	out := make([]validator.Rejection, 0, b.Counts.Rejected)
	for _, r := range b.Log {
		if len(r.Reasons) == 1 && r.Reasons[0] == validator.ReasonComment {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Merge appends o after b. Merging is how directory ingestion folds per-file
// batches; no state is shared between sources.
func (b Batch) Merge(o Batch) Batch {
	b.Records = append(b.Records, o.Records...)
	b.Log = append(b.Log, o.Log...)
	b.Counts.add(o.Counts)
	b.Sources += o.Sources
	b.Failures = append(b.Failures, o.Failures...)
	return b
}

// ParseReader validates every line of r. name is stamped on each log entry.
func ParseReader(ctx context.Context, name string, r io.Reader) (Batch, error) {
	b := Batch{Records: flight.Database{}, Sources: 1}
	n, err := csv.ScanLines(ctx, r, func(l csv.RawLine) error {
		var out validator.Outcome
		if l.Oversized {
			out = validator.ValidateOversized(l.Text, l.Number)
		} else {
			out = validator.Validate(l.Text, l.Number)
		}
		switch out.Kind {
		case validator.Accepted:
			b.Records = append(b.Records, out.Record)
			b.Counts.Accepted++
		case validator.Rejected:
			out.Rejection.Source = name
			b.Log = append(b.Log, out.Rejection)
			b.Counts.Rejected++
		case validator.Comment:
			out.Rejection.Source = name
			b.Log = append(b.Log, out.Rejection)
			b.Counts.Comments++
		default:
			b.Counts.Skipped++
		}
		return nil
	})
	b.Counts.Lines = n
	if err != nil {
		return Batch{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return b, nil
}

// ParseSource opens src and validates it.
func ParseSource(ctx context.Context, src datasource.Source) (Batch, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return Batch{}, err
	}
	defer rc.Close()
	return ParseReader(ctx, src.Name(), rc)
}

// ParseSources validates the sources concurrently, at most Workers at a
// time, and merges the results in source order. A source that fails is
// recorded in Batch.Failures and skipped; the others are still processed. If
// any source failed the returned error wraps ErrSourcesFailed. Context
// cancellation stops the fold.
func ParseSources(ctx context.Context, srcs []datasource.Source) (Batch, error) {
	parts := make([]Batch, len(srcs))
	errs := make([]error, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(Workers, 1))
	for i, src := range srcs {
		g.Go(func() error {
			b, err := ParseSource(gctx, src)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
				return nil
			}
			parts[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{Records: flight.Database{}}, err
	}

	acc := Batch{Records: flight.Database{}}
	for i, src := range srcs {
		if errs[i] != nil {
			acc.Failures = append(acc.Failures, SourceFailure{Source: src.Name(), Err: errs[i]})
			continue
		}
		acc = acc.Merge(parts[i])
	}
	if len(acc.Failures) > 0 {
		names := make([]string, len(acc.Failures))
		for i, f := range acc.Failures {
			names[i] = f.Source
		}
		return acc, fmt.Errorf("%w: %s", ErrSourcesFailed, strings.Join(names, ", "))
	}
	return acc, nil
}

// ParseDir validates every file of dir matching pattern, in listing order.
// A missing directory is returned as a plain error; unreadable files follow
// ParseSources.
func ParseDir(ctx context.Context, dir, pattern string) (Batch, error) {
	files, err := file.List(dir, pattern)
	if err != nil {
		return Batch{}, err
	}
	srcs := make([]datasource.Source, len(files))
	for i, f := range files {
		srcs[i] = f
	}
	return ParseSources(ctx, srcs)
}
