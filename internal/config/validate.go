package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single finding of ValidateRun. Path is a dotted path into the
// config, e.g. "storage.kind".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateRun statically checks a resolved Run. kinds lists the storage
// kinds registered in the binary. It never touches the filesystem.
func ValidateRun(r Run, kinds []string) []Issue {
	var issues []Issue
	issues = append(issues, validateMode(r)...)
	issues = append(issues, validateStorage(r, kinds)...)
	issues = append(issues, validateMetrics(r.Metrics)...)
	return issues
}

func validateMode(r Run) []Issue {
	var issues []Issue

	if !r.Loading() && r.Input.File == "" && r.Input.Dir == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input",
			Message:  "no database source: set an input file (-i), an input directory (-d) or an existing database (-j)",
		})
	}
	if r.Loading() && (r.Input.File != "" || r.Input.Dir != "") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "database",
			Message:  "an existing database is loaded; input sources are ignored",
		})
	}
	if r.Input.Dir != "" && !doublestar.ValidatePattern(r.Input.Pattern) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input.pattern",
			Message:  fmt.Sprintf("invalid glob pattern %q", r.Input.Pattern),
		})
	}
	if r.Building() && strings.TrimSpace(r.ErrorsPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "errors",
			Message:  "rejection log path must not be empty when building",
		})
	}
	if r.Queries != "" && strings.TrimSpace(r.ResponseDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "response_dir",
			Message:  "response directory must not be empty when queries are given",
		})
	}
	return issues
}

func validateStorage(r Run, kinds []string) []Issue {
	var issues []Issue
	s := r.Storage

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	}

	known := false
	for _, k := range kinds {
		if k == s.Kind {
			known = true
			break
		}
	}
	if !known {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; registered: %s", s.Kind, strings.Join(kinds, ", ")),
		})
	}

	if strings.TrimSpace(r.Location()) == "" {
		path := "output"
		if r.Loading() {
			path = "database"
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path,
			Message:  fmt.Sprintf("storage kind %q needs an explicit location (DSN)", s.Kind),
		})
	}
	if s.Kind != "json" && strings.TrimSpace(s.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.table",
			Message:  "storage.table must not be empty for SQL backends",
		})
	}
	if s.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog backend requires a DogStatsD address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics are disabled", m.Backend),
		})
	}
	return issues
}
