package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gehenna", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gehenna", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gehenna", Name: "http_requests_total", Help: "HTTP requests by method, route and status code."},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "gehenna", Name: "http_request_duration_seconds", Help: "HTTP request latency by method and route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	// NameOperations counts registry operations by outcome
	// (ok, rejected, conflict, not_found, unavailable, error).
	NameOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gehenna", Name: "name_operations_total", Help: "Registry operations by operation and outcome."},
		[]string{"op", "result"},
	)
	UpstreamFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "gehenna", Name: "gateway_upstream_failures_total", Help: "Gateway page views served with an empty list because the registry was unavailable."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(NameOperations)
	reg.MustRegister(UpstreamFailures)
}
