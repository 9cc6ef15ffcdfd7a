// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics by the API router:

	curl http://localhost:8420/metrics

# Available Metrics

Recommendation Metrics:
  - recommend_requests_total: Requests by result (cache_hit, computed, invalid)
  - recommend_duration_seconds: End-to-end recommend latency
  - recommend_stage_candidates_total: Products accepted per pipeline stage
  - recommend_stage_failures_total: Stages that degraded to empty (error, timeout, circuit_open)

Cache Metrics:
  - cache_hits_total, cache_misses_total: Lookups by cache_type
  - cache_evictions_total: Removals by cache_type and reason (expired, invalidated, corrupt)
  - cache_entries: Current entry count, updated by the sweeper

View Tracking Metrics:
  - view_events_total: Events by result (queued, dropped, written, failed)
  - view_queue_depth: Events waiting for a tracker worker

Similarity Metrics:
  - similarity_rebuilds_total: Rebuilds by result (success, soft_failure, failure)
  - similarity_rebuild_duration_seconds, similarity_records_stored

Infrastructure Metrics:
  - duckdb_query_duration_seconds, duckdb_query_errors_total
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - events_published_total, events_consumed_total
  - circuit_breaker_state, circuit_breaker_requests_total, circuit_breaker_state_transitions_total
*/
package metrics
