package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "status_service"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by method, route pattern and status code.",
		},
		[]string{"method", "route", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	configErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_errors_total",
			Help:      "Requests that failed because a configuration value did not parse.",
		},
		[]string{"field"},
	)

	telemetryExporterFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_export_failures_total",
			Help:      "Telemetry exporter initialization failures by exporter protocol.",
		},
		[]string{"service_name", "exporter"},
	)
)

// RecordRequest counts a completed request and observes its latency.
// route should be the matched pattern, not the raw path, to bound cardinality.
func RecordRequest(method, route string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordConfigError counts a request rejected because field did not parse.
func RecordConfigError(field string) {
	configErrorsTotal.WithLabelValues(field).Inc()
}

func recordExporterFailure(serviceName, exporter string) {
	if serviceName == "" {
		serviceName = "unknown"
	}
	telemetryExporterFailures.WithLabelValues(serviceName, exporter).Inc()
}

// HTTPRequests exposes the request counter for tests and dashboards.
func HTTPRequests() *prometheus.CounterVec {
	return httpRequestsTotal
}

// ConfigErrors exposes the configuration error counter.
func ConfigErrors() *prometheus.CounterVec {
	return configErrorsTotal
}

// TelemetryExporterFailures exposes the exporter failure counter.
func TelemetryExporterFailures() *prometheus.CounterVec {
	return telemetryExporterFailures
}
