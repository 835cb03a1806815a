package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gqlbind_graphql_requests_total",
			Help: "Total number of GraphQL requests by operation type and status.",
		},
		[]string{"operation", "status"},
	)

	RequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gqlbind_graphql_request_duration_seconds",
			Help:    "Duration of GraphQL requests in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gqlbind_graphql_errors_total",
			Help: "Total number of failed GraphQL requests by error kind.",
		},
		[]string{"kind"},
	)
)

// Register registers all custom gqlbind metrics with the default
// Prometheus registry.
func Register() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDurationSeconds,
		ErrorsTotal,
	)
}
