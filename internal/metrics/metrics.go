package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)
	// WSConnections tracks live websocket connections per role
	WSConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "ws_connections", Help: "Live websocket connections by role."},
		[]string{"role"},
	)
	// EventsPublished counts broker publishes by channel and event type
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "events_published_total", Help: "Events published by channel and type."},
		[]string{"channel", "type"},
	)
	// AlertsCreated counts persisted alerts by type
	AlertsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "alerts_created_total", Help: "Alerts created by type."},
		[]string{"type"},
	)
)

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(WSConnections)
		Registry.MustRegister(EventsPublished)
		Registry.MustRegister(AlertsCreated)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
