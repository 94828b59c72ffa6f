package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	lockOperationsTotal *prometheus.CounterVec
	lockConflictsTotal  prometheus.Counter
	resolutionsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the assessment API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assess_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assess_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assess_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		lockOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assess_complaint_lock_operations_total",
			Help: "Complaint lock operations by kind and outcome.",
		}, []string{"operation", "outcome"})

		lockConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assess_complaint_lock_conflicts_total",
			Help: "Lock operations that lost the uniqueness race against a concurrent writer.",
		})

		resolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assess_complaint_resolutions_total",
			Help: "Complaint resolutions by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, httpErrorsTotal, lockOperationsTotal, lockConflictsTotal, resolutionsTotal)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// LockOperations exposes the counter for complaint lock operations.
func LockOperations() *prometheus.CounterVec {
	RegisterMetrics()
	return lockOperationsTotal
}

// LockConflicts exposes the counter for lost lock races.
func LockConflicts() prometheus.Counter {
	RegisterMetrics()
	return lockConflictsTotal
}

// Resolutions exposes the counter for complaint resolutions.
func Resolutions() *prometheus.CounterVec {
	RegisterMetrics()
	return resolutionsTotal
}
