package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvInput          = "FLIGHTDB_INPUT"
	EnvDir            = "FLIGHTDB_DIR"
	EnvPattern        = "FLIGHTDB_PATTERN"
	EnvDatabase       = "FLIGHTDB_DATABASE"
	EnvQueries        = "FLIGHTDB_QUERIES"
	EnvOutput         = "FLIGHTDB_OUTPUT"
	EnvErrors         = "FLIGHTDB_ERRORS"
	EnvResponseDir    = "FLIGHTDB_RESPONSE_DIR"
	EnvStorage        = "FLIGHTDB_STORAGE"
	EnvTable          = "FLIGHTDB_TABLE"
	EnvBatchSize      = "FLIGHTDB_BATCH_SIZE"
	EnvMetricsBackend = "FLIGHTDB_METRICS_BACKEND"
	EnvPushgatewayURL = "FLIGHTDB_PUSHGATEWAY_URL"
	EnvStatsdAddr     = "FLIGHTDB_STATSD_ADDR"
)

// LoadDotEnv loads variables from the given .env files (".env" when none
// are named) without overriding variables already set. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields of r with the non-empty FLIGHTDB_* variables
// found by lookup (os.LookupEnv when nil).
func ApplyEnv(r *Run, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvInput, &r.Input.File)
	str(EnvDir, &r.Input.Dir)
	str(EnvPattern, &r.Input.Pattern)
	str(EnvDatabase, &r.Database)
	str(EnvQueries, &r.Queries)
	str(EnvOutput, &r.Output)
	str(EnvErrors, &r.ErrorsPath)
	str(EnvResponseDir, &r.ResponseDir)
	str(EnvStorage, &r.Storage.Kind)
	str(EnvTable, &r.Storage.Table)
	str(EnvMetricsBackend, &r.Metrics.Backend)
	str(EnvPushgatewayURL, &r.Metrics.PushgatewayURL)
	str(EnvStatsdAddr, &r.Metrics.StatsdAddr)

	if v, ok := lookup(EnvBatchSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvBatchSize, v, err)
		}
		r.Storage.BatchSize = n
	}
	return nil
}
