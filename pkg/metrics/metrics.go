// Package metrics provides Prometheus metrics for the poppy service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks inbound requests by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poppy",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poppy",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poppy",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	// DatabaseQueryFailures tracks failed queries by failure kind
	DatabaseQueryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poppy",
			Subsystem: "database",
			Name:      "query_failures_total",
			Help:      "Total number of failed database queries by kind",
		},
		[]string{"operation", "kind"},
	)

	// GroupedParents tracks how many parent records a grouped listing produced
	GroupedParents = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poppy",
			Subsystem: "rowgroup",
			Name:      "parents",
			Help:      "Number of parent records produced per grouped listing",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
		},
		[]string{"listing"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poppy",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)
)

// RecordHTTPRequest records an inbound HTTP request metric
func RecordHTTPRequest(method, route, statusCode string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordQuery records a database query metric. kind is empty on success.
func RecordQuery(operation, kind string, durationSeconds float64) {
	DatabaseQueryDuration.WithLabelValues(operation).Observe(durationSeconds)
	if kind != "" {
		DatabaseQueryFailures.WithLabelValues(operation, kind).Inc()
	}
}

// RecordGrouping records the size of a grouped listing
func RecordGrouping(listing string, parents int) {
	GroupedParents.WithLabelValues(listing).Observe(float64(parents))
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}
