package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"flightdb/internal/blob"
	blobfs "flightdb/internal/blob/fs"
	blobs3 "flightdb/internal/blob/s3"
	"flightdb/internal/config"
	"flightdb/internal/datasource"
	"flightdb/internal/datasource/file"
	"flightdb/internal/datasource/httpds"
	"flightdb/internal/flight"
	"flightdb/internal/ingest"
	"flightdb/internal/metrics"
	"flightdb/internal/query"
	"flightdb/internal/rejectlog"
	"flightdb/internal/storage"
)

// exampleLimit caps how many rejection examples the summary log shows.
const exampleLimit = 3

// responseTimeLayout is the minute timestamp in response file names.
const responseTimeLayout = "20060102_1504"

// runResult is what one run produced; tests inspect it.
type runResult struct {
	DB           flight.Database
	Batch        ingest.Batch
	Results      []query.Result
	ResponseFile string
}

// Function variables used as test seams.
var (
	newRepositoryFn = storage.New

	newS3StoreFn = func(ctx context.Context, bucket string) (blob.Store, error) {
		return blobs3.New(ctx, blobs3.ConfigFromEnv(bucket))
	}

	openSourceFn = openSource

	nowFn = time.Now
)

// openSource returns the source for an input location: an http(s) URL or a
// local path.
func openSource(loc string) datasource.Source {
	if httpds.IsURL(loc) {
		return httpds.NewSource(nil, loc)
	}
	return file.NewLocal(loc)
}

// run executes one invocation: obtain a database (load or build), then
// answer the query batch if one was given. A build whose directory held
// unreadable files still writes every output and then returns an error
// wrapping ingest.ErrSourcesFailed.
func run(ctx context.Context, cfg config.Run, runID string, log *zap.Logger) (runResult, error) {
	var res runResult

	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:      cfg.Storage.Kind,
		DSN:       cfg.Location(),
		Table:     cfg.Storage.Table,
		BatchSize: cfg.Storage.BatchSize,
		Logger:    log,
	})
	if err != nil {
		return res, fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	var sourcesErr error
	if cfg.Loading() {
		db, err := timed("load", func() (flight.Database, error) { return repo.Load(ctx) })
		if err != nil {
			return res, fmt.Errorf("load database: %w", err)
		}
		res.DB = db
		log.Info("Loaded existing database",
			zap.String("location", cfg.Database),
			zap.Int("records", db.Len()),
			zap.String("fingerprint", shortFingerprint(db.Fingerprint())),
		)
	} else {
		batch, err := build(ctx, cfg, log)
		if err != nil && !errors.Is(err, ingest.ErrSourcesFailed) {
			return res, err
		}
		sourcesErr = err
		res.Batch = batch
		res.DB = batch.Records

		if err := rejectlog.WriteFile(cfg.ErrorsPath, batch.Log); err != nil {
			return res, err
		}
		_, err = timed("save", func() (struct{}, error) { return struct{}{}, repo.Save(ctx, batch.Records) })
		if err != nil {
			return res, fmt.Errorf("save database: %w", err)
		}
		log.Info("database saved",
			zap.String("storage", cfg.Storage.Kind),
			zap.String("location", cfg.Output),
			zap.Int("records", batch.Records.Len()),
			zap.String("fingerprint", shortFingerprint(batch.Records.Fingerprint())),
		)
	}

	if cfg.Queries != "" {
		results, name, err := answer(ctx, cfg, runID, res.DB, log)
		if err != nil {
			return res, err
		}
		res.Results = results
		res.ResponseFile = name
	}

	return res, sourcesErr
}

// build parses the input file, then the input directory, and merges them.
func build(ctx context.Context, cfg config.Run, log *zap.Logger) (ingest.Batch, error) {
	return timed("parse", func() (ingest.Batch, error) {
		acc := ingest.Batch{Records: flight.Database{}}
		if cfg.Input.File != "" {
			b, err := ingest.ParseSource(ctx, openSourceFn(cfg.Input.File))
			if err != nil {
				return acc, fmt.Errorf("parse input file: %w", err)
			}
			acc = acc.Merge(b)
		}

		var dirErr error
		if cfg.Input.Dir != "" {
			b, err := ingest.ParseDir(ctx, cfg.Input.Dir, cfg.Input.Pattern)
			if err != nil && !errors.Is(err, ingest.ErrSourcesFailed) {
				return acc, fmt.Errorf("parse input directory: %w", err)
			}
			for _, f := range b.Failures {
				log.Warn("source skipped", zap.String("source", f.Source), zap.Error(f.Err))
			}
			acc = acc.Merge(b)
			dirErr = err
		}

		recordCounts(acc.Counts)
		logParseSummary(log, acc)
		return acc, dirErr
	})
}

// answer runs the query batch at cfg.Queries and writes the response file.
func answer(ctx context.Context, cfg config.Run, runID string, db flight.Database, log *zap.Logger) ([]query.Result, string, error) {
	results, err := timed("query", func() ([]query.Result, error) {
		f, err := os.Open(cfg.Queries)
		if err != nil {
			return nil, fmt.Errorf("open queries: %w", err)
		}
		defer f.Close()

		specs, err := query.DecodeRequest(f)
		if err != nil {
			return nil, fmt.Errorf("queries %s: %w", cfg.Queries, err)
		}
		return query.RunBatch(db, specs), nil
	})
	if err != nil {
		return nil, "", err
	}

	failed := query.Failed(results)
	metrics.RecordQueries("ok", len(results)-failed)
	metrics.RecordQueries("error", failed)
	for i, r := range results {
		if r.Error != "" {
			log.Warn("query flagged", zap.Int("index", i), zap.String("error", r.Error))
		}
	}

	name := responseName(runID, nowFn())
	where, err := timed("respond", func() (string, error) {
		return writeResponse(ctx, cfg.ResponseDir, name, results)
	})
	if err != nil {
		return nil, "", err
	}
	log.Info("queries answered",
		zap.Int("queries", len(results)),
		zap.Int("flagged", failed),
		zap.String("response", where),
	)
	return results, where, nil
}

func responseName(runID string, t time.Time) string {
	return fmt.Sprintf("response_%s_%s.json", runID, t.Format(responseTimeLayout))
}

// writeResponse stores the encoded results under dir, which is a local
// directory or an s3://bucket/prefix location. It returns where the
// response went.
func writeResponse(ctx context.Context, dir, name string, results []query.Result) (string, error) {
	var buf bytes.Buffer
	if err := query.EncodeResponse(&buf, results); err != nil {
		return "", fmt.Errorf("encode response: %w", err)
	}

	var (
		st  blob.Store
		key = name
		loc string
	)
	if bucket, prefix, ok := blobs3.ParseLocation(dir); ok {
		s, err := newS3StoreFn(ctx, bucket)
		if err != nil {
			return "", fmt.Errorf("response store: %w", err)
		}
		st = s
		key = path.Join(prefix, name)
		loc = "s3://" + bucket + "/" + key
	} else {
		st = blobfs.New(dir)
		loc = filepath.Join(dir, name)
	}

	if err := st.Put(ctx, key, &buf, blob.PutOptions{ContentType: "application/json"}); err != nil {
		return "", fmt.Errorf("write response %s: %w", loc, err)
	}
	return loc, nil
}

// timed runs fn as the named step and records its outcome.
func timed[T any](step string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.RecordStep(step, err, time.Since(start))
	return v, err
}

func recordCounts(c ingest.Counts) {
	metrics.RecordLines("accepted", c.Accepted)
	metrics.RecordLines("rejected", c.Rejected)
	metrics.RecordLines("comment", c.Comments)
	metrics.RecordLines("skipped", c.Skipped)
}

// logParseSummary prints the "Parsing completed" line and the aggregated
// rejection reasons.
func logParseSummary(log *zap.Logger, b ingest.Batch) {
	log.Info("Parsing completed",
		zap.Int("sources", b.Sources),
		zap.Int("failed_sources", len(b.Failures)),
		zap.Int("lines", b.Counts.Lines),
		zap.Int("valid", b.Counts.Accepted),
		zap.Int("errors", b.Counts.Rejected),
		zap.Int("comments", b.Counts.Comments),
		zap.Int("skipped", b.Counts.Skipped),
	)

	agg := newErrAgg(exampleLimit)
	for _, r := range b.Rejections() {
		agg.add(r.Reason(), rejectlog.Format(r))
	}
	if agg.count == 0 {
		return
	}
	log.Info("rejections",
		zap.Int("count", agg.count),
		zap.Strings("examples", agg.first),
		zap.Any("by_reason", agg.top()),
	)
}

// errAgg counts messages per bucket and keeps the first few examples.
type errAgg struct {
	limit   int
	count   int
	first   []string
	buckets map[string]int
}

func newErrAgg(limit int) *errAgg {
	return &errAgg{limit: limit, buckets: make(map[string]int)}
}

func (a *errAgg) add(bucket, example string) {
	a.buckets[bucket]++
	if a.count < a.limit {
		a.first = append(a.first, example)
	}
	a.count++
}

type bucketCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// top returns the buckets by descending count, ties by name.
func (a *errAgg) top() []bucketCount {
	out := make([]bucketCount, 0, len(a.buckets))
	for k, v := range a.buckets {
		out = append(out, bucketCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}
