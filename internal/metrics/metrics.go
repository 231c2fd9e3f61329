// Package metrics provides Prometheus metrics for the tracker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// recordWritesTotal counts record mutations.
	// Labels:
	//   - kind: record table (e.g., "feeding", "sleep")
	//   - op: "create", "update", "delete" or "import"
	recordWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grape_record_writes_total",
			Help: "Total number of record mutations",
		},
		[]string{"kind", "op"},
	)

	// aggregationDuration observes summary and trend computations, including
	// the store reads that feed them.
	aggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grape_aggregation_duration_seconds",
			Help:    "Duration of summary and trend computations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	// httpRequestsTotal counts served HTTP requests by route pattern.
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grape_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// httpRequestDuration observes HTTP latency by route pattern.
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grape_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// importsTotal counts inbox documents by outcome ("imported", "failed").
	importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grape_imports_total",
			Help: "Total number of inbox documents processed",
		},
		[]string{"status"},
	)

	// backupsTotal counts backup runs by outcome ("success", "failed").
	backupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grape_backups_total",
			Help: "Total number of backup runs",
		},
		[]string{"status"},
	)

	// sseClients is the number of open event streams.
	sseClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "grape_sse_clients",
			Help: "Number of connected event stream clients",
		},
	)
)

func init() {
	prometheus.MustRegister(recordWritesTotal)
	prometheus.MustRegister(aggregationDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(importsTotal)
	prometheus.MustRegister(backupsTotal)
	prometheus.MustRegister(sseClients)
}

// RecordWrite counts one mutation of kind.
func RecordWrite(kind, op string) {
	recordWritesTotal.WithLabelValues(kind, op).Inc()
}

// ObserveAggregation records how long operation took since start.
func ObserveAggregation(operation string, start time.Time) {
	aggregationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route, status string, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordImport counts one processed inbox document.
func RecordImport(status string) {
	importsTotal.WithLabelValues(status).Inc()
}

// RecordBackup counts one backup run.
func RecordBackup(status string) {
	backupsTotal.WithLabelValues(status).Inc()
}

// SetSSEClients reports the current number of event stream clients.
func SetSSEClients(n int) {
	sseClients.Set(float64(n))
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
