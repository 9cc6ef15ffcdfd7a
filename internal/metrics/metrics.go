// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - DuckDB query performance
// - API endpoint latency and throughput
// - Recommendation pipeline stages
// - Cache efficiency
// - View tracking and similarity rebuilds

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
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
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"result"}, // "cache_hit", "computed", "invalid"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RecommendStageCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_stage_candidates_total",
			Help: "Total number of products accepted from each pipeline stage",
		},
		[]string{"stage"},
	)

	RecommendStageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_stage_failures_total",
			Help: "Total number of pipeline stages that produced no candidates because of an error",
		},
		[]string{"stage", "reason"}, // reason: "error", "timeout", "circuit_open"
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry, invalidation, corruption)",
		},
		[]string{"cache_type", "reason"},
	)

	// View Tracking Metrics
	ViewEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_events_total",
			Help: "Total number of view events by outcome",
		},
		[]string{"result"}, // "queued", "dropped", "written", "failed"
	)

	ViewQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "view_queue_depth",
			Help: "Current number of view events waiting for a worker",
		},
	)

	// Similarity Metrics
	SimilarityRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_rebuilds_total",
			Help: "Total number of similarity rebuilds by outcome",
		},
		[]string{"result"}, // "success", "soft_failure", "failure"
	)

	SimilarityRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_rebuild_duration_seconds",
			Help:    "Duration of single-product similarity rebuilds in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SimilarityRecordsStored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_records_stored",
			Help:    "Number of similarity records kept per rebuild",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 10},
		},
	)

	// Event Transport Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published by topic and outcome",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of events consumed by topic and outcome",
		},
		[]string{"topic", "result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages to bound label cardinality
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records the outcome and latency of one recommend call.
func RecordRecommendation(result string, duration time.Duration) {
	RecommendRequests.WithLabelValues(result).Inc()
	RecommendDuration.Observe(duration.Seconds())
}

// RecordStage records how many products a pipeline stage contributed.
func RecordStage(stage string, accepted int) {
	if accepted > 0 {
		RecommendStageCandidates.WithLabelValues(stage).Add(float64(accepted))
	}
}

// RecordStageFailure records a stage that degraded to an empty result.
func RecordStageFailure(stage, reason string) {
	RecommendStageFailures.WithLabelValues(stage, reason).Inc()
}

// RecordRebuild records a single similarity rebuild.
func RecordRebuild(result string, stored int, duration time.Duration) {
	SimilarityRebuilds.WithLabelValues(result).Inc()
	SimilarityRebuildDuration.Observe(duration.Seconds())
	if result != "failure" {
		SimilarityRecordsStored.Observe(float64(stored))
	}
}

// RecordViewEvent records the outcome of a view event.
func RecordViewEvent(result string) {
	ViewEvents.WithLabelValues(result).Inc()
}
