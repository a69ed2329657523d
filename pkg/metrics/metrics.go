package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Query metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livestatus_requests_total",
			Help: "Total number of livestatus requests by table and status",
		},
		[]string{"table", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "livestatus_request_duration_seconds",
			Help:    "Livestatus request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table"},
	)

	ConnectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "livestatus_connections_total",
			Help: "Total number of accepted client connections",
		},
	)

	// Feed metrics
	EventsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livestatus_events_applied_total",
			Help: "Total number of feed events applied to the store by type",
		},
		[]string{"type"},
	)

	EventsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livestatus_events_rejected_total",
			Help: "Total number of feed events rejected by the store by type",
		},
		[]string{"type"},
	)

	// Store metrics
	ObjectsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "livestatus_objects_total",
			Help: "Number of rows per table in the object store",
		},
		[]string{"table"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ConnectionsTotal)
	prometheus.MustRegister(EventsApplied)
	prometheus.MustRegister(EventsRejected)
	prometheus.MustRegister(ObjectsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewMux serves /metrics, /health, /ready and /live
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", HealthHandler())
	mux.HandleFunc("/ready", ReadyHandler())
	mux.HandleFunc("/live", LivenessHandler())
	return mux
}
