// Package metrics aggregates solve outcomes into prometheus collectors.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"boxhaul/internal/report"
)

const namespace = "boxhaul"

type Metrics struct {
	reg *prometheus.Registry

	runs       *prometheus.CounterVec
	boxes      prometheus.Counter
	delivered  prometheus.Counter
	actions    *prometheus.CounterVec
	checks     prometheus.Counter
	rejections prometheus.Counter
	fallbacks  prometheus.Counter
	violations prometheus.Counter
	cycles     prometheus.Histogram
	tripSize   prometheus.Histogram
	elapsed    prometheus.Histogram
}

// New builds a private registry so concurrent solvers and tests do not
// share the global default.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "runs_total",
			Help: "Solves finished, by terminal status.",
		}, []string{"status"}),
		boxes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "boxes_total",
			Help: "Boxes present in solved grids.",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "boxes_delivered_total",
			Help: "Boxes returned to the origin.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "actions_total",
			Help: "Emitted actions, by kind.",
		}, []string{"kind"}),
		checks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "feasibility_checks_total",
			Help: "Plans passed to the feasibility simulator.",
		}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "feasibility_rejections_total",
			Help: "Plans the simulator found would crush a box.",
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "fallback_trips_total",
			Help: "Cycles that fell back to a single-box trip.",
		}),
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "contract_violations_total",
			Help: "Boxes crushed on a committed path.",
		}),
		cycles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "cycles_per_run",
			Help:    "Transport cycles needed per solve.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		tripSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "boxes_per_trip",
			Help:    "Boxes carried home per cycle.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		elapsed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "solve_duration_seconds",
			Help:    "Wall time spent in a solve.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.reg.MustRegister(m.runs, m.boxes, m.delivered, m.actions, m.checks, m.rejections,
		m.fallbacks, m.violations, m.cycles, m.tripSize, m.elapsed)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Observe folds one finished run into the collectors. Safe for concurrent use.
func (m *Metrics) Observe(r report.Report) {
	m.runs.WithLabelValues(string(r.Status)).Inc()
	m.boxes.Add(float64(r.Boxes))
	m.delivered.Add(float64(r.Delivered))
	m.actions.WithLabelValues("move").Add(float64(r.Moves))
	m.actions.WithLabelValues("pick").Add(float64(r.Picks))
	m.checks.Add(float64(r.Stats.FeasibilityChecks))
	m.rejections.Add(float64(r.Stats.Rejections))
	m.fallbacks.Add(float64(r.Stats.Fallbacks))
	m.violations.Add(float64(len(r.Violations)))
	m.cycles.Observe(float64(len(r.Cycles)))
	for _, c := range r.Cycles {
		m.tripSize.Observe(float64(len(c.Plan)))
	}
	m.elapsed.Observe(r.ElapsedMS / 1000)
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("metrics textfile %s: %w", path, err)
	}
	return nil
}
