// Package prompush pushes flightdb metrics to a Prometheus Pushgateway at the
// end of a run. A one-shot CLI has no long-lived scrape endpoint, so the
// registry is pushed once from Flush.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"flightdb/internal/metrics"
)

// DefaultJob is the Pushgateway job name used when none is given.
const DefaultJob = "flightdb"

// Backend is a metrics.Backend that collects into a private registry.
type Backend struct {
	gatewayURL string
	jobName    string
	grouping   map[string]string
	reg        *prometheus.Registry

	steps        *prometheus.CounterVec
	stepDuration *prometheus.SummaryVec
	lines        *prometheus.CounterVec
	queries      *prometheus.CounterVec
}

// NewBackend builds a backend that pushes to gatewayURL under jobName.
// grouping adds extra grouping labels, typically the run id.
func NewBackend(jobName, gatewayURL string, grouping map[string]string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = DefaultJob
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		grouping:   grouping,
		reg:        prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Run step executions by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StepDurationSeconds,
			Help:       "Run step duration in seconds by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"step", "status"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.LinesTotal,
			Help: "Input lines by classification.",
		}, []string{"kind"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.QueriesTotal,
			Help: "Answered queries by status.",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{b.steps, b.stepDuration, b.lines, b.queries} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.steps != nil {
			b.steps.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.LinesTotal:
		if b.lines != nil {
			b.lines.WithLabelValues(labels["kind"]).Add(delta)
		}
	case metrics.QueriesTotal:
		if b.queries != nil {
			b.queries.WithLabelValues(labels["status"]).Add(delta)
		}
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway, replacing the group.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	for k, v := range b.grouping {
		p = p.Grouping(k, v)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
