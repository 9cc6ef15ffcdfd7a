// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/sillage/internal/models"
	"github.com/tomtom215/sillage/internal/recommend"
)

// recommendationRequest is the validated form of the recommendation
// query string.
type recommendationRequest struct {
	Limit     int    `json:"limit" validate:"gte=0,lte=100"`
	ProductID int64  `json:"product_id" validate:"gte=0"`
	UserID    string `json:"user_id" validate:"omitempty,max=128,identifier"`
}

func (req recommendationRequest) query() recommend.Query {
	return recommend.Query{Limit: req.Limit, ProductID: req.ProductID, UserID: req.UserID}
}

// parseRecommendationRequest reads limit, product_id and user_id.
func parseRecommendationRequest(r *http.Request) (recommendationRequest, *models.APIError) {
	limit, apiErr := intQuery(r, "limit", DefaultLimit)
	if apiErr != nil {
		return recommendationRequest{}, apiErr
	}
	productID, apiErr := intQuery(r, "product_id", 0)
	if apiErr != nil {
		return recommendationRequest{}, apiErr
	}

	req := recommendationRequest{
		Limit:     int(limit),
		ProductID: productID,
		UserID:    r.URL.Query().Get("user_id"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		return req, apiErr
	}
	return req, nil
}

// Recommendations handles GET /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, apiErr := parseRecommendationRequest(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	result, err := h.engine.Recommend(r.Context(), req.query())
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidLimit) {
			respondError(w, r, http.StatusBadRequest, codeValidation, "limit must be non-negative", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeRecommend, "Failed to compute recommendations", err)
		return
	}

	products := result.Products
	if products == nil {
		products = []models.Product{}
	}
	latency := time.Since(start)

	respondSuccess(w, r, http.StatusOK, &models.RecommendationResponse{
		Products:  products,
		Count:     len(products),
		Limit:     req.Limit,
		CacheHit:  result.CacheHit,
		LatencyMS: float64(latency.Microseconds()) / 1000,
	}, start, result.CacheHit)
}

// InvalidateRecommendation handles DELETE /api/v1/recommendations/cache.
// It takes the same query parameters as Recommendations.
func (h *Handler) InvalidateRecommendation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, apiErr := parseRecommendationRequest(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	q := req.query()
	respondSuccess(w, r, http.StatusOK, &models.CacheInvalidateResponse{
		Key:         recommend.CacheKey(q),
		Invalidated: h.engine.InvalidateRecommendation(q),
	}, start, false)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondError(w, r, http.StatusServiceUnavailable, codeNotConfigured, "Cache statistics are not available", nil)
		return
	}

	stats := h.cache.Stats()
	respondSuccess(w, r, http.StatusOK, &models.CacheStatsResponse{
		Name:        h.cache.Name(),
		TTLSeconds:  h.cache.TTL().Seconds(),
		Entries:     h.cache.Len(),
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Evictions:   stats.Evictions,
		HitRate:     h.cache.HitRate(),
		LastCleanup: stats.LastCleanup,
	}, time.Time{}, false)
}
