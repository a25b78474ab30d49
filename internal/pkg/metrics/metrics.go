// Package metrics provides Prometheus metrics definitions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hustlehub"

var (
	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status_code"},
	)

	// DBPoolConnections tracks database connection pool state.
	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_connections",
			Help:      "Number of database connections by state",
		},
		[]string{"state"},
	)

	// MutationsTotal counts form actions and status toggles by outcome.
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "mutations_total",
			Help:      "Mutation actions by name and outcome",
		},
		[]string{"action", "outcome"},
	)

	// ViewInvalidationsTotal counts invalidation signals per page path.
	ViewInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "views",
			Name:      "invalidations_total",
			Help:      "View invalidation signals by page path",
		},
		[]string{"path"},
	)

	// ViewRendersTotal counts page renders by cache result (hit, miss, stale).
	ViewRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "views",
			Name:      "renders_total",
			Help:      "Page data renders by cache result",
		},
		[]string{"result"},
	)

	// NewsUpstreamRequestsTotal counts calls to the headlines provider.
	NewsUpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "news",
			Name:      "upstream_requests_total",
			Help:      "Headline provider requests by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	// NewsCacheTotal counts headline cache lookups by result.
	NewsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "news",
			Name:      "cache_total",
			Help:      "Headline cache lookups by result",
		},
		[]string{"result"},
	)
)

// Outcome labels used with MutationsTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)
