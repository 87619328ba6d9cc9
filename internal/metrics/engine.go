// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "itemfilter"

// Engine and session metrics.
var (
	ClicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_total",
			Help:      "Filter button clicks by view and outcome",
		},
		[]string{"view", "result"}, // "changed" / "noop" / "rejected"
	)

	SortsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sorts_total",
			Help:      "Sort requests by view and key type",
		},
		[]string{"view", "key_type"},
	)

	TransitionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transition_duration_seconds",
			Help:      "Time spent recomputing visibility or order",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"kind"},
	)

	ShownRatio = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shown_ratio",
			Help:      "Share of the collection left visible after a filter change",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"view"},
	)

	SettlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settles_total",
			Help:      "Settled transitions by kind",
		},
		[]string{"kind"},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Live filtering sessions",
		},
	)

	SessionsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Sessions dropped after idling past their TTL",
		},
	)
)

var registerOnce sync.Once

// Register registers every collector with the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			ClicksTotal,
			SortsTotal,
			TransitionDuration,
			ShownRatio,
			SettlesTotal,
			SessionsActive,
			SessionsEvictedTotal,
		)
	})
}
