// Package metrics exposes Prometheus instruments for resolutions and loads.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes used as the "outcome" label.
const (
	OutcomeLoaded  = "loaded"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Resolution outcomes.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeError   = "error"
)

// Recorder holds the instruments. A nil *Recorder records nothing, so
// library callers never need to check for one.
type Recorder struct {
	resolutionsTotal   *prometheus.CounterVec
	diagnosticsTotal   *prometheus.CounterVec
	resolutionDuration prometheus.Histogram
	graphNodes         prometheus.Gauge
	loadsTotal         *prometheus.CounterVec
	loadDuration       prometheus.Histogram
	workersBusy        prometheus.Gauge
}

// NewRecorder creates the instruments and registers them with reg. A nil reg
// leaves them unregistered.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "addongraph_resolutions_total",
				Help: "Number of dependency resolutions by outcome.",
			},
			[]string{"outcome"},
		),
		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "addongraph_diagnostics_total",
				Help: "Number of resolution diagnostics by kind and severity.",
			},
			[]string{"kind", "severity"},
		),
		resolutionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "addongraph_resolution_duration_seconds",
				Help:    "Time taken to resolve a batch of manifests.",
				Buckets: prometheus.DefBuckets,
			},
		),
		graphNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "addongraph_graph_nodes",
				Help: "Number of nodes in the last resolved dependency graph.",
			},
		),
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "addongraph_loads_total",
				Help: "Number of addon loads by outcome.",
			},
			[]string{"outcome"},
		),
		loadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "addongraph_load_duration_seconds",
				Help:    "Time taken by a single addon load callback.",
				Buckets: prometheus.DefBuckets,
			},
		),
		workersBusy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "addongraph_loader_workers_busy",
				Help: "Number of loader workers currently running a load callback.",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(
			r.resolutionsTotal,
			r.diagnosticsTotal,
			r.resolutionDuration,
			r.graphNodes,
			r.loadsTotal,
			r.loadDuration,
			r.workersBusy,
		)
	}
	return r
}

// ObserveResolution records one finished resolution.
func (r *Recorder) ObserveResolution(d time.Duration, outcome string, nodes int) {
	if r == nil {
		return
	}
	r.resolutionsTotal.WithLabelValues(outcome).Inc()
	r.resolutionDuration.Observe(d.Seconds())
	r.graphNodes.Set(float64(nodes))
}

// CountDiagnostic records one diagnostic.
func (r *Recorder) CountDiagnostic(kind, severity string) {
	if r == nil {
		return
	}
	r.diagnosticsTotal.WithLabelValues(kind, severity).Inc()
}

// LoadStarted marks a worker busy.
func (r *Recorder) LoadStarted() {
	if r == nil {
		return
	}
	r.workersBusy.Inc()
}

// ObserveLoad records the end of a load callback and frees the worker.
func (r *Recorder) ObserveLoad(d time.Duration, outcome string) {
	if r == nil {
		return
	}
	r.workersBusy.Dec()
	r.loadsTotal.WithLabelValues(outcome).Inc()
	r.loadDuration.Observe(d.Seconds())
}

// CountSkipped records loads that were never attempted.
func (r *Recorder) CountSkipped(n int) {
	if r == nil || n == 0 {
		return
	}
	r.loadsTotal.WithLabelValues(OutcomeSkipped).Add(float64(n))
}
