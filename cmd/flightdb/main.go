// Command flightdb builds a flight-schedule database from comma-delimited
// sources, or loads an existing one, and answers a batch of queries against
// it.
//
//	flightdb -i flights.csv -q queries.json
//	flightdb -d schedules/ -o db.json
//	flightdb -j db.json -q queries.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flightdb/internal/config"
	"flightdb/internal/ingest"
	"flightdb/internal/logging"
	"flightdb/internal/metrics"
	"flightdb/internal/metrics/datadog"
	"flightdb/internal/metrics/prompush"
	"flightdb/internal/storage"

	// register all backends with the storage factory.
	_ "flightdb/internal/storage/all"
)

// cliOptions are the flags that are not part of config.Run.
type cliOptions struct {
	configPath string
	envFile    string
	validate   bool
	verbose    bool
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stderr))
}

func realMain(args []string, stderr io.Writer) int {
	cfg, opts, err := loadConfig(args, os.LookupEnv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	issues := config.ValidateRun(cfg, storage.ListKinds())
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "configuration is invalid")
		return 2
	}
	if opts.validate {
		fmt.Fprintln(stderr, "configuration is valid")
		return 0
	}

	log, err := logging.New(opts.verbose)
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	runID := uuid.NewString()
	log = logging.WithRun(log, runID)

	flush := setupMetrics(cfg.Metrics, runID, log)
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	if _, err := run(ctx, cfg, runID, log); err != nil {
		if errors.Is(err, ingest.ErrSourcesFailed) {
			log.Error("run completed with unreadable sources", zap.Error(err))
		} else {
			log.Error("run failed", zap.Error(err))
		}
		return 1
	}
	log.Debug("completed", zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)))
	return 0
}

// loadConfig resolves the run configuration: flag, then environment
// (after .env), then config file, then default.
func loadConfig(args []string, lookup config.LookupFunc) (config.Run, cliOptions, error) {
	var (
		opts config.Run
		cli  cliOptions
		bs   int
	)
	fs := flag.NewFlagSet("flightdb", flag.ContinueOnError)
	fs.StringVar(&opts.Input.File, "i", "", "build the database from this CSV file")
	fs.StringVar(&opts.Input.Dir, "d", "", "build the database from every matching file in this directory")
	fs.StringVar(&opts.Input.Pattern, "pattern", config.DefaultPattern, "glob for -d directory entries")
	fs.StringVar(&opts.Database, "j", "", "load an existing database instead of parsing sources")
	fs.StringVar(&opts.Queries, "q", "", "JSON query batch to run")
	fs.StringVar(&opts.Output, "o", config.DefaultOutput, "database output location (path, s3://bucket/key or DSN)")
	fs.StringVar(&opts.ErrorsPath, "errors", config.DefaultErrorsPath, "rejection log path")
	fs.StringVar(&opts.ResponseDir, "response-dir", config.DefaultResponseDir, "directory (or s3://bucket/prefix) for response files")
	fs.StringVar(&opts.Storage.Kind, "storage", config.DefaultStorageKind, "storage backend (json, sqlite, postgres, mssql, mysql)")
	fs.StringVar(&opts.Storage.Table, "table", config.DefaultTable, "table name for SQL backends")
	fs.IntVar(&bs, "batch-size", storage.DefaultBatchSize, "rows per insert batch for SQL backends")
	fs.StringVar(&opts.Metrics.Backend, "metrics-backend", config.DefaultMetrics, "metrics backend (none, pushgateway, datadog)")
	fs.StringVar(&opts.Metrics.PushgatewayURL, "pushgateway-url", config.DefaultPushgateway, "Pushgateway base URL")
	fs.StringVar(&opts.Metrics.StatsdAddr, "statsd-addr", "", "DogStatsD address")
	fs.StringVar(&cli.configPath, "config", "", "JSON run config path")
	fs.StringVar(&cli.envFile, "env-file", ".env", "dotenv file loaded into the environment")
	fs.BoolVar(&cli.validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&cli.verbose, "v", false, "enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return config.Run{}, cli, err
	}
	if fs.NArg() > 0 {
		return config.Run{}, cli, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if err := config.LoadDotEnv(cli.envFile); err != nil {
		return config.Run{}, cli, err
	}
	cfg, err := config.Load(cli.configPath)
	if err != nil {
		return config.Run{}, cli, err
	}
	if err := config.ApplyEnv(&cfg, lookup); err != nil {
		return config.Run{}, cli, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.Input.File = opts.Input.File
		case "d":
			cfg.Input.Dir = opts.Input.Dir
		case "pattern":
			cfg.Input.Pattern = opts.Input.Pattern
		case "j":
			cfg.Database = opts.Database
		case "q":
			cfg.Queries = opts.Queries
		case "o":
			cfg.Output = opts.Output
		case "errors":
			cfg.ErrorsPath = opts.ErrorsPath
		case "response-dir":
			cfg.ResponseDir = opts.ResponseDir
		case "storage":
			cfg.Storage.Kind = opts.Storage.Kind
		case "table":
			cfg.Storage.Table = opts.Storage.Table
		case "batch-size":
			cfg.Storage.BatchSize = bs
		case "metrics-backend":
			cfg.Metrics.Backend = opts.Metrics.Backend
		case "pushgateway-url":
			cfg.Metrics.PushgatewayURL = opts.Metrics.PushgatewayURL
		case "statsd-addr":
			cfg.Metrics.StatsdAddr = opts.Metrics.StatsdAddr
		}
	})
	cfg.ApplyDefaults()
	return cfg, cli, nil
}

// setupMetrics installs the configured backend and returns the function
// that flushes it at exit. Backend failures only disable metrics.
func setupMetrics(m config.Metrics, runID string, log *zap.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "pushgateway":
		job := m.Options.String("job", prompush.DefaultJob)
		b, err = prompush.NewBackend(job, m.PushgatewayURL, map[string]string{"run_id": runID})
	case "datadog":
		tags := append(m.Options.StringSlice("tags"), "run_id:"+runID)
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.StatsdAddr,
			Namespace:  m.Options.String("namespace", ""),
			GlobalTags: tags,
		})
	case "", "none":
		log.Debug("metrics disabled")
		return func() {}
	default:
		log.Warn("unknown metrics backend; metrics disabled", zap.String("backend", m.Backend))
		return func() {}
	}
	if err != nil {
		log.Warn("metrics backend init failed; using nop", zap.String("backend", m.Backend), zap.Error(err))
		return func() {}
	}

	log.Debug("metrics enabled", zap.String("backend", m.Backend))
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
	}
}

// shortFingerprint renders a database fingerprint for logs.
func shortFingerprint(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}
