// Package metrics exposes Prometheus collectors for HTTP requests and SQL
// statements.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skryldev/jobly/db"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobly_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobly_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// QueryDuration is the latency of SQL statements by verb and outcome.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobly_db_query_duration_seconds",
			Help:    "SQL statement latency in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"statement", "status"},
	)
)

// ObserveRequest records one finished HTTP request. An unmatched route is
// reported as "unmatched" to keep label cardinality bounded.
func ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	RequestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// QueryCollector feeds db.NewMetricsHook into QueryDuration.
type QueryCollector struct{}

func (QueryCollector) RecordQuery(query string, d time.Duration, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	QueryDuration.WithLabelValues(Statement(query), status).Observe(d.Seconds())
}

var _ db.MetricsCollector = QueryCollector{}

// Statement returns the lower-cased leading SQL verb of query, e.g.
// "select" or "update".
func Statement(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	switch verb := strings.ToLower(fields[0]); verb {
	case "select", "insert", "update", "delete", "with", "begin", "commit", "rollback":
		return verb
	default:
		return "other"
	}
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
