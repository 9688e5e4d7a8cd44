package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the hardening proxy.
type Metrics struct {
	// Hardening metrics
	ResponsesHardenedTotal prometheus.Counter
	HeadersSetTotal        *prometheus.CounterVec

	// Upstream proxy metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	UpstreamErrorsTotal     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHitsTotal *prometheus.CounterVec

	// Circuit breaker metrics
	BreakerTransitionsTotal *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		ResponsesHardenedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "armor_responses_hardened_total",
				Help: "Total number of responses that received the hardened header set",
			},
		),
		HeadersSetTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "armor_headers_set_total",
				Help: "Total number of security headers set, by header name",
			},
			[]string{"header"},
		),
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "armor_upstream_requests_total",
				Help: "Total number of requests proxied to the upstream",
			},
			[]string{"method", "status"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "armor_upstream_request_duration_seconds",
				Help:    "Duration of proxied upstream requests (supports p50, p95, p99 percentiles)",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method"},
		),
		UpstreamErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "armor_upstream_errors_total",
				Help: "Total number of upstream proxy failures",
			},
			[]string{"reason"},
		),
		RateLimitHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "armor_rate_limit_hits_total",
				Help: "Total number of requests rejected by rate limiting",
			},
			[]string{"limit_type"},
		),
		BreakerTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "armor_breaker_transitions_total",
				Help: "Total number of circuit breaker state transitions",
			},
			[]string{"from", "to"},
		),
	}
}

// ObserveHardened records one hardened response and the headers set on it.
func (m *Metrics) ObserveHardened(headers []string) {
	if m == nil {
		return
	}
	m.ResponsesHardenedTotal.Inc()
	for _, h := range headers {
		m.HeadersSetTotal.WithLabelValues(h).Inc()
	}
}

// ObserveUpstream records one proxied request.
func (m *Metrics) ObserveUpstream(method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(method, status).Inc()
	m.UpstreamRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveUpstreamError records one upstream failure by reason.
func (m *Metrics) ObserveUpstreamError(reason string) {
	if m == nil {
		return
	}
	m.UpstreamErrorsTotal.WithLabelValues(reason).Inc()
}

// ObserveRateLimit records one rate limit rejection.
func (m *Metrics) ObserveRateLimit(limitType string) {
	if m == nil {
		return
	}
	m.RateLimitHitsTotal.WithLabelValues(limitType).Inc()
}

// ObserveBreakerTransition records one circuit breaker state change.
func (m *Metrics) ObserveBreakerTransition(from, to string) {
	if m == nil {
		return
	}
	m.BreakerTransitionsTotal.WithLabelValues(from, to).Inc()
}
