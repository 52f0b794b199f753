package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideas_explorer_api_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ideas_explorer_api_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Security guard decisions, labeled by the error code a request was
	// denied with
	guardDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideas_explorer_api_guard_denials_total",
			Help: "Requests denied by the security guard, by error code",
		},
		[]string{"code"},
	)

	refreshThrottledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ideas_explorer_api_refresh_throttled_total",
			Help: "Session refresh attempts rejected by the refresh throttle",
		},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, durationSeconds float64) {
	status := "unknown"
	if statusCode >= 200 && statusCode < 300 {
		status = "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		status = "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		status = "4xx"
	} else if statusCode >= 500 {
		status = "5xx"
	}

	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordGuardDenial records a request denied by the security guard
func RecordGuardDenial(code string) {
	guardDenialsTotal.WithLabelValues(code).Inc()
}

// RecordRefreshThrottled records a throttled session refresh attempt
func RecordRefreshThrottled() {
	refreshThrottledTotal.Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
