package web

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "icebreaker_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"route", "status"})

	requestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "icebreaker_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	queryDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "icebreaker_query_duration_seconds",
		Help:    "Duration of video listing queries in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	pageCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "icebreaker_page_cache_total",
		Help: "Page cache lookups by result",
	}, []string{"result"})

	revalidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "icebreaker_revalidations_total",
		Help: "Total number of revalidation requests",
	}, []string{"status"})

	errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "icebreaker_errors_total",
		Help: "Total number of errors",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDurationSeconds)
	prometheus.MustRegister(queryDurationSeconds)
	prometheus.MustRegister(pageCacheTotal)
	prometheus.MustRegister(revalidationsTotal)
	prometheus.MustRegister(errorsTotal)
}

// RecordQueryDuration records how long a listing query took; source is "page" or "api"
func RecordQueryDuration(source string, d time.Duration) {
	queryDurationSeconds.WithLabelValues(source).Observe(d.Seconds())
}

// RecordCacheResult records a page cache hit, miss or error
func RecordCacheResult(result string) {
	pageCacheTotal.WithLabelValues(result).Inc()
}

// RecordRevalidation records the outcome of a revalidation request
func RecordRevalidation(status string) {
	revalidationsTotal.WithLabelValues(status).Inc()
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
