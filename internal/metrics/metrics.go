// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package metrics holds the Prometheus instruments for ReelRank. All metrics
// register on the default registry through promauto and are served at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation engine

	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Recommendation requests by context type and outcome",
		},
		[]string{"context_type", "outcome"}, // outcome: served, empty, cancelled
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "End-to-end ranking latency",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	RecommendReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates_returned",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50},
		},
	)

	GeneratorResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_generator_results_total",
			Help: "Generator outcomes by strategy and status",
		},
		[]string{"strategy", "status"},
	)

	GeneratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_generator_duration_seconds",
			Help:    "Per-generator latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	SimilarityIndexSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_similarity_index_sessions",
			Help: "Session summaries held by the cross-session similarity index",
		},
	)

	// Behavior store

	BehaviorEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavior_events_total",
			Help: "Behavior events accepted by kind",
		},
		[]string{"kind"},
	)

	BehaviorStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavior_store_errors_total",
			Help: "Swallowed behavior store failures by operation",
		},
		[]string{"operation", "kind"},
	)

	BehaviorEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavior_events_evicted_total",
			Help: "Behavior events removed by retention",
		},
		[]string{"kind"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "behavior_active_sessions",
			Help: "Visitor sessions seen within the inactivity window",
		},
	)

	// Feedback loop

	FeedbackRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_records_total",
			Help: "Recommendation feedback records by action",
		},
		[]string{"action"},
	)

	FeedbackErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_errors_total",
			Help: "Swallowed feedback failures by stage",
		},
		[]string{"stage"}, // publish, decode, persist
	)

	// Catalog

	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Catalog lookups served from cache",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Catalog lookups that went to the backing store",
		},
	)

	CatalogErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_errors_total",
			Help: "Catalog lookup failures by operation",
		},
		[]string{"operation"},
	)

	CatalogBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_circuit_breaker_state",
			Help: "Catalog circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// HTTP API

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "In-flight API requests",
		},
	)
)

// RecordRecommendation records one ranking request.
func RecordRecommendation(contextType, outcome string, returned int, duration time.Duration) {
	RecommendRequests.WithLabelValues(contextType, outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
	RecommendReturned.Observe(float64(returned))
}

// RecordGenerator records one generator call.
func RecordGenerator(strategy, status string, duration time.Duration) {
	GeneratorResults.WithLabelValues(strategy, status).Inc()
	GeneratorDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordBehaviorError counts a swallowed store failure.
func RecordBehaviorError(operation, kind string) {
	BehaviorStoreErrors.WithLabelValues(operation, kind).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge up or down.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
