package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Admission pipeline metrics. Registered once on the default registry;
// recording functions are safe from any goroutine.
var (
	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ganymede_auth_attempts_total",
			Help: "Total number of authentication attempts by result",
		},
		[]string{"result"},
	)

	authDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ganymede_auth_duration_seconds",
			Help:    "Duration of admission decisions in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs to ~16s
		},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ganymede_auth_cache_lookups_total",
			Help: "Total number of validation cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	rateLimitDenials = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ganymede_rate_limit_denials_total",
			Help: "Total number of requests denied by the rate limiter",
		},
	)

	poolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ganymede_service_pool_size",
			Help: "Current number of live backend service handles",
		},
	)

	alertsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ganymede_alerts_triggered_total",
			Help: "Total number of security alerts triggered by severity",
		},
		[]string{"severity"},
	)
)

// RecordAuthAttempt counts an authentication attempt. result is one of
// "success", "invalid_key", "missing_key", or "rate_limited".
func RecordAuthAttempt(result string) {
	authAttempts.WithLabelValues(result).Inc()
}

// ObserveAuthDuration records how long an admission decision took.
func ObserveAuthDuration(seconds float64) {
	authDuration.Observe(seconds)
}

// RecordCacheLookup counts a validation cache lookup. outcome is "hit"
// or "miss".
func RecordCacheLookup(outcome string) {
	cacheLookups.WithLabelValues(outcome).Inc()
}

// RecordRateLimitDenied counts a rate limiter denial.
func RecordRateLimitDenied() {
	rateLimitDenials.Inc()
}

// SetPoolSize updates the backend pool occupancy gauge.
func SetPoolSize(size int) {
	poolSize.Set(float64(size))
}

// RecordAlert counts a triggered security alert.
func RecordAlert(severity string) {
	alertsTriggered.WithLabelValues(severity).Inc()
}

// MetricsHandler returns the HTTP handler serving the default registry
// in Prometheus exposition format.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
