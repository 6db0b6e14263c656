// Package metrics registers the Prometheus collectors shared by the API
// server and the worker binaries. Collectors live on the default registry;
// the API exposes them at /metrics, workers just increment them so a
// scrape of a long-lived worker (or a pushgateway setup) sees the same
// series names.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRuns counts ingestion runs by terminal status.
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "youthpolicy",
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Ingestion runs by terminal status.",
	}, []string{"status"})

	// SyncRecords counts per-record outcomes during ingestion.
	SyncRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "youthpolicy",
		Subsystem: "sync",
		Name:      "records_total",
		Help:      "Ingested records by outcome.",
	}, []string{"outcome"})

	// Notifications counts closing-soon push dispatches by outcome.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "youthpolicy",
		Subsystem: "notify",
		Name:      "dispatches_total",
		Help:      "Closing-soon push dispatches by outcome.",
	}, []string{"outcome"})

	// HealthProbes counts upstream health probes by outcome.
	HealthProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "youthpolicy",
		Subsystem: "health",
		Name:      "probes_total",
		Help:      "Upstream health probes by outcome.",
	}, []string{"outcome"})

	// ProbeDuration observes upstream probe round-trip time.
	ProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "youthpolicy",
		Subsystem: "health",
		Name:      "probe_duration_seconds",
		Help:      "Upstream probe round-trip time.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTPRequests counts API requests by method, route pattern, and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "youthpolicy",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "API requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes API request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "youthpolicy",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "API request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Record outcome label values.
const (
	OutcomeInserted = "inserted"
	OutcomeUpdated  = "updated"
	OutcomeError    = "error"
	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
	OutcomeOK       = "ok"
)
