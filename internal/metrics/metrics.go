// Package metrics records run-level counters and step timings behind a
// pluggable Backend. The default backend discards everything, so callers can
// record unconditionally; the prompush and datadog subpackages provide real
// backends installed with SetBackend.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StepTotal           = "flightdb_step_total"
	StepDurationSeconds = "flightdb_step_duration_seconds"
	LinesTotal          = "flightdb_lines_total"
	QueriesTotal        = "flightdb_queries_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface a metrics system must provide.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records one duration-style observation.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered data, if the backend buffers.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs b. A nil b keeps the current backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of a run step (parse, load, save, query,
// respond) and records how long it took.
func RecordStep(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordLines adds delta input lines of the given classification
// (accepted, rejected, comment, skipped).
func RecordLines(kind string, delta int) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(LinesTotal, float64(delta), Labels{"kind": kind})
}

// RecordQueries counts answered queries; status is "ok" or "error".
func RecordQueries(status string, delta int) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(QueriesTotal, float64(delta), Labels{"status": status})
}
