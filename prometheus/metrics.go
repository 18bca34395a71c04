package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tinbr"

var (
	// HTTP request metrics
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// StatusCodeCategoryCounter groups responses into 2xx, 4xx and 5xx
	StatusCodeCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_status_category_total",
			Help:      "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"category", "method", "path"},
	)

	// Storage operation metrics
	DbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of storage operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	CollectionOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_operations_total",
			Help:      "Total number of repository operations per collection",
		},
		[]string{"collection", "operation"},
	)

	DomainErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_errors_total",
			Help:      "Total number of domain errors returned to callers",
		},
		[]string{"kind"},
	)

	// Authentication metrics
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	// Block cascade metrics
	CascadeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_total",
			Help:      "Total number of owner block/unblock cascades",
		},
		[]string{"action"},
	)

	CascadeAffected = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cascade_affected_properties",
			Help:      "Number of properties changed by a cascade",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// Quote sink metrics
	QuoteInsertsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_inserts_total",
			Help:      "Total number of quote save attempts by result",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// InitMetrics registers every collector with reg. Later calls are no-ops.
func InitMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			HttpRequestsTotal,
			HttpRequestDuration,
			StatusCodeCategoryCounter,
			DbOperationDuration,
			CollectionOperationsCounter,
			DomainErrorsCounter,
			LoginCounter,
			CascadeCounter,
			CascadeAffected,
			QuoteInsertsCounter,
		)
	})
}

// RecordStatusCategory increments the category counter matching status
func RecordStatusCategory(status int, method, path string) {
	category := ""
	switch {
	case status >= 200 && status < 300:
		category = "2xx"
	case status >= 400 && status < 500:
		category = "4xx"
	case status >= 500 && status < 600:
		category = "5xx"
	}
	if category != "" {
		StatusCodeCategoryCounter.WithLabelValues(category, method, path).Inc()
	}
}

// TrackDBOperation returns a function that records the duration of a storage operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordCollectionOperation increments the counter for repository operations
func RecordCollectionOperation(collection, operation string) {
	CollectionOperationsCounter.WithLabelValues(collection, operation).Inc()
}

// RecordDomainError counts errors returned to clients by kind
func RecordDomainError(kind string) {
	DomainErrorsCounter.WithLabelValues(kind).Inc()
}

// RecordLogin counts login attempts by result
func RecordLogin(result string) {
	LoginCounter.WithLabelValues(result).Inc()
}

// RecordCascade counts a cascade and how many properties it touched
func RecordCascade(action string, affected int64) {
	CascadeCounter.WithLabelValues(action).Inc()
	CascadeAffected.Observe(float64(affected))
}

// RecordQuoteInsert counts quote inserts by result
func RecordQuoteInsert(result string) {
	QuoteInsertsCounter.WithLabelValues(result).Inc()
}
