// Package metrics holds the Prometheus collectors for instruction
// resolution and tool execution. Lume is a one-shot CLI, so instead of
// serving /metrics the registry is written to a node-exporter textfile
// after each run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"lume/internal/domain"
)

// Metrics owns a private registry; nothing is added to the default one.
type Metrics struct {
	registry *prometheus.Registry

	resolutions *prometheus.CounterVec
	executions  *prometheus.CounterVec
	blocked     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func New() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lume_resolutions_total",
			Help: "Instructions resolved, by pipeline stage and tool",
		},
		[]string{"stage", "tool"},
	)
	m.executions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lume_executions_total",
			Help: "Tool executions, by outcome",
		},
		[]string{"tool", "outcome"},
	)
	m.blocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lume_security_blocks_total",
			Help: "Commands blocked by the security policy",
		},
		[]string{"tool"},
	)
	m.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lume_execution_duration_seconds",
			Help:    "Wall-clock duration of tool executions",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"tool"},
	)

	for _, c := range []prometheus.Collector{m.resolutions, m.executions, m.blocked, m.duration} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// Registry exposes the gatherer, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveResolution(stage, tool string) {
	if tool == "" {
		tool = "none"
	}
	m.resolutions.WithLabelValues(stage, tool).Inc()
}

func (m *Metrics) ObserveExecution(tool string, kind domain.ResultKind, d time.Duration) {
	m.executions.WithLabelValues(tool, string(kind)).Inc()
	m.duration.WithLabelValues(tool).Observe(d.Seconds())
}

func (m *Metrics) ObserveBlocked(tool string) {
	m.blocked.WithLabelValues(tool).Inc()
}

// WriteTextfile atomically writes the registry in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
