package prometheus

import (
	"time"

	"timetrack-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Domain operation metrics
	ProjectOperationsCounter   prometheus.CounterVec
	TimeEntryOperationsCounter prometheus.CounterVec

	// Stats engine metrics
	StatsCalculationDuration prometheus.Histogram

	// TCS metrics
	TCSFormatCounter   prometheus.Counter
	TCSAutoFillCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Project operation metrics
	ProjectOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_project_operations_total",
			Help: "Total number of project operations",
		},
		[]string{"operation"},
	)

	// Time entry operation metrics
	TimeEntryOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_time_entry_operations_total",
			Help: "Total number of time entry operations",
		},
		[]string{"operation"},
	)

	// Stats engine metrics
	StatsCalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_stats_calculation_duration_seconds",
			Help:    "Duration of project stats calculations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// TCS metrics
	TCSFormatCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tcs_format_total",
			Help: "Total number of TCS format operations",
		},
	)

	TCSAutoFillCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tcs_auto_fill_total",
			Help: "Total number of TCS auto-fill runs",
		},
		[]string{"result", "dry_run"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordProjectOperation increments the counter for project operations
func RecordProjectOperation(operation string) {
	ProjectOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordTimeEntryOperation increments the counter for time entry operations
func RecordTimeEntryOperation(operation string) {
	TimeEntryOperationsCounter.WithLabelValues(operation).Inc()
}

// TrackStatsCalculation records the duration of one stats computation
func TrackStatsCalculation() func(startTime time.Time) {
	return func(startTime time.Time) {
		StatsCalculationDuration.Observe(time.Since(startTime).Seconds())
	}
}

// RecordTCSFormat increments the counter for TCS format operations
func RecordTCSFormat() {
	TCSFormatCounter.Inc()
}

// RecordTCSAutoFill increments the counter for TCS auto-fill runs
func RecordTCSAutoFill(result string, dryRun bool) {
	label := "false"
	if dryRun {
		label = "true"
	}
	TCSAutoFillCounter.WithLabelValues(result, label).Inc()
}
