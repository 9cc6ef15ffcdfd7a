// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/sillage/internal/models"
)

// HealthLive handles the liveness probe. It succeeds while the process
// serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, &models.HealthResponse{
		Alive:         true,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}, time.Time{}, false)
}

// HealthReady handles the readiness probe. It returns 503 while the
// database is unreachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := true
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		dbConnected = h.db.Ping(ctx) == nil
		cancel()
	}

	payload := &models.HealthResponse{
		Alive:         true,
		Ready:         dbConnected,
		Database:      dbConnected,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if !dbConnected {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "not_ready",
			Data:     payload,
			Metadata: metadataFor(r, time.Time{}, false),
			Error:    &models.APIError{Code: codeUnavailable, Message: "Database is not reachable"},
		})
		return
	}
	respondSuccess(w, r, http.StatusOK, payload, time.Time{}, false)
}
