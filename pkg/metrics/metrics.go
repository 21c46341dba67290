package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the multi-version store.
type Metrics struct {
	WritesTotal            prometheus.Counter
	DeltasTotal            prometheus.Counter
	StaleMarksTotal        prometheus.Counter
	DeletesTotal           prometheus.Counter
	ReadsTotal             *prometheus.CounterVec
	MaterializationsTotal  prometheus.Counter
	MaterializedDeltaCount prometheus.Histogram
	TrackedKeys            prometheus.Gauge
}

// Read outcome label values.
const (
	ReadOutcomeVersioned  = "versioned"
	ReadOutcomeResolved   = "resolved"
	ReadOutcomeUnresolved = "unresolved"
	ReadOutcomeNotFound   = "not_found"
	ReadOutcomeDependency = "dependency"
	ReadOutcomeDeltaError = "delta_error"
)

// New creates and registers the store metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WritesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mvcc_writes_total",
			Help: "Tentative writes recorded in the multi-version store",
		}),
		DeltasTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mvcc_deltas_total",
			Help: "Delta operations recorded in the multi-version store",
		}),
		StaleMarksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mvcc_stale_marks_total",
			Help: "Records invalidated pending re-execution",
		}),
		DeletesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mvcc_deletes_total",
			Help: "Records removed after a re-execution dropped the key",
		}),
		ReadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mvcc_reads_total",
			Help: "Multi-version reads by outcome",
		}, []string{"outcome"}),
		MaterializationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mvcc_materializations_total",
			Help: "Delta-bearing keys materialized at block commit",
		}),
		MaterializedDeltaCount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mvcc_materialized_deltas_per_key",
			Help:    "Deltas resolved per key during materialization",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		TrackedKeys: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mvcc_tracked_keys",
			Help: "Keys with at least one record in the current block",
		}),
	}
}
