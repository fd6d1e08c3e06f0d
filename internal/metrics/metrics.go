// Package metrics defines bifrost's Prometheus instrumentation for the
// HTTP edge, GraphQL resolution, and the upstream connector. Per-cache
// metrics live alongside their cache in internal/swrcache; this package
// covers everything else.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters, gauges, and histograms bifrost exposes on
// /metrics. Construct with New, which registers everything against the
// supplied registry; see Handler/NewRegistry for wiring the /metrics route.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge

	GraphQLOperationsTotal   *prometheus.CounterVec
	GraphQLOperationDuration *prometheus.HistogramVec
	GraphQLFieldErrorsTotal  *prometheus.CounterVec

	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	UpstreamRetriesTotal    *prometheus.CounterVec

	PlebisciteQueriesTotal   *prometheus.CounterVec
	PlebisciteQueryDuration  prometheus.Histogram
}

// New creates and registers a Metrics instance under the "bifrost"
// namespace against reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bifrost",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served, by path and status class.",
		}, []string{"path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bifrost",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),

		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bifrost",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),

		GraphQLOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bifrost",
			Subsystem: "graphql",
			Name:      "operations_total",
			Help:      "Total number of GraphQL operations executed, by root field and outcome.",
		}, []string{"field", "outcome"}),

		GraphQLOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bifrost",
			Subsystem: "graphql",
			Name:      "operation_duration_seconds",
			Help:      "GraphQL operation latency in seconds, by root field.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"field"}),

		GraphQLFieldErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bifrost",
			Subsystem: "graphql",
			Name:      "field_errors_total",
			Help:      "Total number of per-field resolver errors, by field and error class.",
		}, []string{"field", "class"}),

		UpstreamRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bifrost",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of requests made to the MediaWiki upstream, by action and outcome.",
		}, []string{"action", "outcome"}),

		UpstreamRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bifrost",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "MediaWiki upstream request latency in seconds, by action.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),

		UpstreamRetriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bifrost",
			Subsystem: "upstream",
			Name:      "retries_total",
			Help:      "Total number of retry attempts made against the MediaWiki upstream, by action.",
		}, []string{"action"}),

		PlebisciteQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bifrost",
			Subsystem: "plebiscite",
			Name:      "queries_total",
			Help:      "Total number of Erowid experience-report queries, by outcome.",
		}, []string{"outcome"}),

		PlebisciteQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bifrost",
			Subsystem: "plebiscite",
			Name:      "query_duration_seconds",
			Help:      "MongoDB Erowid query latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration, m.HTTPInFlight,
		m.GraphQLOperationsTotal, m.GraphQLOperationDuration, m.GraphQLFieldErrorsTotal,
		m.UpstreamRequestsTotal, m.UpstreamRequestDuration, m.UpstreamRetriesTotal,
		m.PlebisciteQueriesTotal, m.PlebisciteQueryDuration,
	)

	return m
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordGraphQLOperation records a completed root-field resolution.
func (m *Metrics) RecordGraphQLOperation(field, outcome string, duration time.Duration) {
	m.GraphQLOperationsTotal.WithLabelValues(field, outcome).Inc()
	m.GraphQLOperationDuration.WithLabelValues(field).Observe(duration.Seconds())
}

// RecordGraphQLFieldError records a per-field resolver error.
func (m *Metrics) RecordGraphQLFieldError(field string, class string) {
	m.GraphQLFieldErrorsTotal.WithLabelValues(field, class).Inc()
}

// RecordUpstreamRequest records a completed upstream MediaWiki request.
func (m *Metrics) RecordUpstreamRequest(action, outcome string, duration time.Duration) {
	m.UpstreamRequestsTotal.WithLabelValues(action, outcome).Inc()
	m.UpstreamRequestDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordUpstreamRetry records a single retry attempt for action.
func (m *Metrics) RecordUpstreamRetry(action string) {
	m.UpstreamRetriesTotal.WithLabelValues(action).Inc()
}

// RecordPlebisciteQuery records a completed Erowid report query.
func (m *Metrics) RecordPlebisciteQuery(outcome string, duration time.Duration) {
	m.PlebisciteQueriesTotal.WithLabelValues(outcome).Inc()
	m.PlebisciteQueryDuration.Observe(duration.Seconds())
}
