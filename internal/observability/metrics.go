package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	httpRequestsTotal         *prometheus.CounterVec
	httpLatencySeconds        *prometheus.HistogramVec
	notificationsPublished    *prometheus.CounterVec
	sseClientsActive          prometheus.Gauge
	sseStreamDurationSeconds  prometheus.Histogram
	notificationComposeErrors prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funagig_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "funagig_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funagig_notifications_published_total",
			Help: "Total number of notifications composed and dispatched.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "funagig_sse_clients_active",
			Help: "Number of currently connected notification stream clients.",
		})

		sseStreamDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "funagig_sse_stream_duration_seconds",
			Help:    "Observed lifetime of notification stream connections.",
			Buckets: []float64{1, 5, 15, 60, 120, 300, 600},
		})

		notificationComposeErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "funagig_notification_compose_errors_total",
			Help: "Notification synthesis failures swallowed by the event layer.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			notificationsPublished,
			sseClientsActive,
			sseStreamDurationSeconds,
			notificationComposeErrors,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for served requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// NotificationsPublishedTotal exposes the counter for dispatched notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// SSEClientsActive exposes the gauge tracking open stream connections.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// SSEStreamDuration exposes the histogram of stream connection lifetimes.
func SSEStreamDuration() prometheus.Histogram {
	RegisterMetrics()
	return sseStreamDurationSeconds
}

// NotificationComposeErrors exposes the counter for swallowed synthesis failures.
func NotificationComposeErrors() prometheus.Counter {
	RegisterMetrics()
	return notificationComposeErrors
}
