// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skatespot_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// UpstreamRequestDuration records latency of calls to external
	// collaborators (identity provider, object storage).
	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skatespot_upstream_request_duration_seconds",
		Help:    "Latency of outbound calls to upstream dependencies",
		Buckets: prometheus.DefBuckets,
	}, []string{"dependency", "outcome"})

	// AuthFailures counts rejected bearer tokens by guard variant.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skatespot_auth_failures_total",
		Help: "Total number of rejected authentication attempts",
	}, []string{"guard"})
)
