// Package config defines the JSON-serializable run configuration for the
// flightdb binary and the helpers that resolve it from a config file, the
// environment and command-line flags.
//
// Example:
//
//	{
//	  "input":    { "dir": "schedules", "pattern": "*.csv" },
//	  "output":   "db.json",
//	  "queries":  "queries.json",
//	  "storage":  { "kind": "json" },
//	  "metrics":  { "backend": "datadog", "statsd_addr": "127.0.0.1:8125",
//	                "options": { "namespace": "flightdb.", "tags": ["env:dev"] } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultStorageKind = "json"
	DefaultOutput      = "db.json"
	DefaultSQLiteFile  = "flights.db"
	DefaultErrorsPath  = "errors.txt"
	DefaultResponseDir = "."
	DefaultPattern     = "*.csv"
	DefaultTable       = "flights"
	DefaultMetrics     = "none"
	DefaultPushgateway = "http://localhost:9091"
)

// Run is the full configuration of one invocation.
type Run struct {
	// Input selects the sources a database is built from.
	Input Input `json:"input"`

	// Database is the location of an existing database to load. When set,
	// no source is parsed and nothing is rewritten.
	Database string `json:"database"`

	// Queries is the path of a JSON query batch; empty means no queries.
	Queries string `json:"queries"`

	// Output is where a freshly built database is saved.
	Output string `json:"output"`

	// ErrorsPath is where the rejection log of a build is written.
	ErrorsPath string `json:"errors"`

	// ResponseDir receives the response file of a query batch.
	ResponseDir string `json:"response_dir"`

	Storage Storage `json:"storage"`
	Metrics Metrics `json:"metrics"`
}

// Input lists the sources of a build. File and Dir may both be set; the
// file is parsed first.
type Input struct {
	File    string `json:"file"`
	Dir     string `json:"dir"`
	Pattern string `json:"pattern"`
}

// Storage selects the backend the database is saved to and loaded from.
// The location itself is Run.Output or Run.Database.
type Storage struct {
	Kind      string `json:"kind"`
	Table     string `json:"table"`
	BatchSize int    `json:"batch_size"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is one of "none", "pushgateway" or "datadog".
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	StatsdAddr     string `json:"statsd_addr"`

	// Options carries backend-specific settings: "job" for the Pushgateway,
	// "namespace" and "tags" for Datadog.
	Options Options `json:"options"`
}

// Loading reports whether the run loads an existing database.
func (r Run) Loading() bool { return r.Database != "" }

// Building reports whether the run builds a database from sources.
func (r Run) Building() bool {
	return !r.Loading() && (r.Input.File != "" || r.Input.Dir != "")
}

// Location is the storage location the run reads or writes.
func (r Run) Location() string {
	if r.Loading() {
		return r.Database
	}
	return r.Output
}

// ApplyDefaults fills every unset field with its default. The default
// output depends on the storage kind; server-backed kinds have none.
func (r *Run) ApplyDefaults() {
	if r.Storage.Kind == "" {
		r.Storage.Kind = DefaultStorageKind
	}
	if r.Storage.Table == "" {
		r.Storage.Table = DefaultTable
	}
	if r.Output == "" {
		switch r.Storage.Kind {
		case "json":
			r.Output = DefaultOutput
		case "sqlite":
			r.Output = DefaultSQLiteFile
		}
	}
	if r.ErrorsPath == "" {
		r.ErrorsPath = DefaultErrorsPath
	}
	if r.ResponseDir == "" {
		r.ResponseDir = DefaultResponseDir
	}
	if r.Input.Pattern == "" {
		r.Input.Pattern = DefaultPattern
	}
	if r.Metrics.Backend == "" {
		r.Metrics.Backend = DefaultMetrics
	}
	if r.Metrics.Backend == "pushgateway" && r.Metrics.PushgatewayURL == "" {
		r.Metrics.PushgatewayURL = DefaultPushgateway
	}
	if r.Metrics.Options == nil {
		r.Metrics.Options = Options{}
	}
}

// Load decodes the JSON config file at path. An empty path yields a zero Run.
func Load(path string) (Run, error) {
	var r Run
	if path == "" {
		return r, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return r, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return r, fmt.Errorf("decode config %s: %w", path, err)
	}
	return r, nil
}

// Options fetches typed values from a free-form JSON object, returning the
// default when a key is missing or has an unexpected type.
type Options map[string]any

// String returns the string at key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// StringSlice returns the strings of an array value at key. Non-string
// elements are skipped; a missing key or non-array value yields nil.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON decodes a missing or null object into an empty, non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
