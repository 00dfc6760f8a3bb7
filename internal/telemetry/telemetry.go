package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives one observation per query. Implementations must never
// block or fail the request they describe.
type Recorder interface {
	Record(path, entity string, duration time.Duration, status string)
}

var (
	// QueriesTotal counts engine queries by execution path, entity, and outcome.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srql_queries_total",
			Help: "Total number of SRQL queries",
		},
		[]string{"path", "entity", "status"},
	)
	// QueryDuration is the latency of engine queries.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "srql_query_duration_seconds",
			Help:    "SRQL query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

// PrometheusRecorder publishes query observations to the process registry.
type PrometheusRecorder struct{}

// NewPrometheusRecorder creates the default recorder.
func NewPrometheusRecorder() PrometheusRecorder {
	return PrometheusRecorder{}
}

// Record observes one query.
func (PrometheusRecorder) Record(path, entity string, duration time.Duration, status string) {
	QueriesTotal.WithLabelValues(path, entity, status).Inc()
	QueryDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// NopRecorder discards all observations.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(string, string, time.Duration, string) {}
