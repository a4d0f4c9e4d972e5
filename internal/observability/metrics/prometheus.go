package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	PathHTTP  = "http"
	PathStore = "store"
)

var (
	// Define buckets for delivery duration histogram (1ms to 30s)
	durationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_http_requests_total",
			Help: "Total number of HTTP requests processed, labeled by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "push_http_request_duration_seconds",
			Help:    "Histogram of latencies for HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// EventsReceived counts notification-created events read from a trigger source.
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_events_received_total",
			Help: "Total number of notification-created events received, by source and record type.",
		},
		[]string{"source", "type"},
	)

	// EventsFiltered counts events whose record type is not watched.
	EventsFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_events_filtered_total",
			Help: "Total number of events ignored because their record type is not watched.",
		},
		[]string{"type"},
	)

	DispatchSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_dispatch_skipped_total",
			Help: "Total number of store-triggered dispatches ended without sending, by type and reason.",
		},
		[]string{"type", "reason"},
	)

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_deliveries_total",
			Help: "Total number of push delivery attempts, by entry path and result.",
		},
		[]string{"path", "result"},
	)

	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "push_delivery_duration_seconds",
			Help:    "Histogram of push delivery duration in seconds, by entry path and success status.",
			Buckets: durationBuckets,
		},
		[]string{"path", "success"},
	)

	ErrorTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_error_total",
			Help: "Total number of errors, labeled by type.",
		},
		[]string{"type"},
	)
)

// MetricsHandler returns the HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveDelivery records the outcome and duration of one delivery attempt.
func ObserveDelivery(path string, success bool, start time.Time) {
	result, successStr := "failure", "false"
	if success {
		result, successStr = "success", "true"
	}
	DeliveriesTotal.WithLabelValues(path, result).Inc()
	DeliveryDuration.WithLabelValues(path, successStr).Observe(time.Since(start).Seconds())
}
