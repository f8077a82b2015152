package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RowsImported = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transitload",
		Name:      "rows_imported_total",
		Help:      "Total normalized rows enqueued for bulk write.",
	})
	BatchesCommitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transitload",
		Name:      "batches_committed_total",
		Help:      "Total bulk batches acknowledged by the store.",
	})
	BatchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transitload",
		Name:      "batch_failures_total",
		Help:      "Total bulk batches rejected by the store.",
	})
	TasksCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transitload",
		Name:      "tasks_completed_total",
		Help:      "Total agency tasks completed without error.",
	})
	TasksFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transitload",
		Name:      "tasks_failed_total",
		Help:      "Total agency tasks aborted by a stage failure.",
	})
	WritesInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "transitload",
		Name:      "writes_in_flight",
		Help:      "Bulk batches issued but not yet acknowledged.",
	})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transitload",
		Name:      "http_requests_total",
		Help:      "Status API requests by method, path and response code.",
	}, []string{"method", "path", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "transitload",
		Name:      "http_request_duration_seconds",
		Help:      "Status API request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Init registers collectors; call once from main.
func Init() {
	prometheus.MustRegister(RowsImported, BatchesCommitted, BatchFailures, TasksCompleted, TasksFailed, WritesInFlight, HTTPRequests, HTTPDuration)
}
