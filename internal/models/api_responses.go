// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" or "error". On success Data carries the payload; on
// error the Error field is populated and Data is null.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"products": [...], "count": 4},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 3, "cached": true}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the machine-readable error payload.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendationResponse is the payload of the recommendations endpoint.
type RecommendationResponse struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
	Limit    int       `json:"limit"`
	CacheHit bool      `json:"cache_hit"`

	// LatencyMS is the wall time spent inside the pipeline.
	LatencyMS float64 `json:"latency_ms"`
}

// SimilarityResponse is the payload of the stored-similarities endpoint.
type SimilarityResponse struct {
	ProductID    int64              `json:"product_id"`
	Similarities []SimilarityRecord `json:"similarities"`
}

// RebuildResponse reports the outcome of a synchronous similarity rebuild.
type RebuildResponse struct {
	ProductID int64 `json:"product_id"`
	Stored    int   `json:"stored"`
}

// ViewAcceptedResponse acknowledges a view event. Recording happens after
// the response is sent.
type ViewAcceptedResponse struct {
	ProductID int64 `json:"product_id"`
	Accepted  bool  `json:"accepted"`
}

// BulkRebuildResponse reports how many products were queued for rebuild.
type BulkRebuildResponse struct {
	Queued int `json:"queued"`
}

// CacheInvalidateResponse reports whether a cached entry existed.
type CacheInvalidateResponse struct {
	Key         string `json:"key"`
	Invalidated bool   `json:"invalidated"`
}

// CacheStatsResponse is a snapshot of the recommendation cache.
type CacheStatsResponse struct {
	Name        string    `json:"name"`
	TTLSeconds  float64   `json:"ttl_seconds"`
	Entries     int       `json:"entries"`
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Evictions   int64     `json:"evictions"`
	HitRate     float64   `json:"hit_rate"`
	LastCleanup time.Time `json:"last_cleanup,omitempty"`
}

// HealthResponse is the payload of the health probes.
type HealthResponse struct {
	Alive         bool    `json:"alive"`
	Ready         bool    `json:"ready"`
	Database      bool    `json:"database_connected"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
