// Package metrics provides Prometheus metrics for the consensus engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Snapshot outcome labels.
const (
	// OutcomeSampled marks a snapshot whose posterior came from MCMC sampling.
	OutcomeSampled = "sampled"
	// OutcomeFallback marks a snapshot whose posterior came from the fallback estimator.
	OutcomeFallback = "fallback"
	// OutcomeNull marks a snapshot for which no posterior could be computed.
	OutcomeNull = "null"
)

// Fallback reason labels.
const (
	// FallbackSingleSource means only one usable source existed.
	FallbackSingleSource = "single_source"
	// FallbackSamplerError means the sampler failed and was substituted.
	FallbackSamplerError = "sampler_error"
	// FallbackDisabled means sampling was disabled by configuration.
	FallbackDisabled = "disabled"
)

var (
	// SnapshotsTotal is a counter of processed snapshots by outcome.
	SnapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshots_total",
			Help: "Total number of snapshots processed, labeled by posterior outcome",
		},
		[]string{"outcome"},
	)

	// FitDuration is a histogram of posterior sampling duration.
	FitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fit_duration_seconds",
			Help:    "Duration of hierarchical model fits",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	// FallbacksTotal is a counter of fallback estimates by reason.
	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallbacks_total",
			Help: "Total number of fallback estimates, labeled by reason",
		},
		[]string{"reason"},
	)

	// DroppedSourcesTotal is a counter of sources dropped for unusable mass.
	DroppedSourcesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dropped_sources_total",
			Help: "Total number of sources dropped for contributing no usable mass",
		},
	)
)

// Init initializes Prometheus metrics registry.
func Init() {
	// Register all metrics
	prometheus.MustRegister(
		SnapshotsTotal,
		FitDuration,
		FallbacksTotal,
		DroppedSourcesTotal,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address and path.
func ServeHTTP(addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordSnapshot records a processed snapshot outcome.
func RecordSnapshot(outcome string) {
	SnapshotsTotal.WithLabelValues(outcome).Inc()
}

// RecordFit records the duration of a model fit.
func RecordFit(duration time.Duration) {
	FitDuration.Observe(duration.Seconds())
}

// RecordFallback records a fallback estimate.
func RecordFallback(reason string) {
	FallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordDroppedSource records a source dropped from a snapshot.
func RecordDroppedSource() {
	DroppedSourcesTotal.Inc()
}
