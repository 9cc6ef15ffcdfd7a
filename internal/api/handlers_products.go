// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package api

import (
	"errors"
	"io"
	"net/http"
	"time"
	"unicode"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/models"
	"github.com/tomtom215/sillage/internal/recommend"
	"github.com/tomtom215/sillage/internal/supervisor/services"
)

// maxViewBodyBytes bounds the view request body.
const maxViewBodyBytes = 4 << 10

// maxClientKeyLen bounds session cookie values accepted from clients.
const maxClientKeyLen = 128

// viewRequest is the optional body of a view event.
type viewRequest struct {
	UserID string `json:"user_id" validate:"omitempty,max=128,identifier"`
}

// TrackView handles POST /api/v1/products/{id}/views.
//
// The view is handed to the tracker and the handler answers 202 without
// waiting for it to be stored.
func (h *Handler) TrackView(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	productID, apiErr := productIDParam(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	var req viewRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxViewBodyBytes))
	if err != nil {
		respondError(w, r, http.StatusRequestEntityTooLarge, codeInvalidBody, "Request body too large", nil)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, codeInvalidBody, "Request body must be a JSON object", nil)
			return
		}
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	clientKey := h.sessionCookie(w, r)
	h.engine.TrackView(productID, req.UserID, clientKey)

	logging.Ctx(r.Context()).Trace().
		Int64("product_id", productID).
		Str("client_key", logging.SanitizeClientKey(clientKey)).
		Msg("view accepted")

	respondSuccess(w, r, http.StatusAccepted, &models.ViewAcceptedResponse{
		ProductID: productID,
		Accepted:  true,
	}, start, false)
}

// sessionCookie returns the client key from the session cookie, issuing a
// new cookie when the request has none or an unusable one.
func (h *Handler) sessionCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(h.cookieName); err == nil && validClientKey(c.Value) {
		return c.Value
	}

	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    key,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}

func validClientKey(key string) bool {
	if key == "" || len(key) > maxClientKeyLen {
		return false
	}
	for _, r := range key {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Similarities handles GET /api/v1/products/{id}/similarities.
func (h *Handler) Similarities(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	productID, apiErr := productIDParam(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	records, err := h.similarities.GetSimilarities(r.Context(), productID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "Failed to load similarities", err)
		return
	}
	if records == nil {
		records = []models.SimilarityRecord{}
	}

	respondSuccess(w, r, http.StatusOK, &models.SimilarityResponse{
		ProductID:    productID,
		Similarities: records,
	}, start, false)
}

// RebuildSimilarities handles POST /api/v1/products/{id}/similarities/rebuild.
// The rebuild runs in the request and its failure is reported.
func (h *Handler) RebuildSimilarities(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	productID, apiErr := productIDParam(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	records, err := h.engine.RebuildSimilarities(r.Context(), productID)
	if err != nil {
		if errors.Is(err, recommend.ErrProductNotFound) {
			respondError(w, r, http.StatusNotFound, codeNotFound, "Product not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeRebuild, "Failed to rebuild similarities", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, &models.RebuildResponse{
		ProductID: productID,
		Stored:    len(records),
	}, start, false)
}

// RebuildAll handles POST /api/v1/similarities/rebuild. Every active
// product is queued; rebuilds run in the background at a throttled rate.
func (h *Handler) RebuildAll(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.rebuilds == nil {
		respondError(w, r, http.StatusServiceUnavailable, codeNotConfigured, "Bulk rebuild is not available", nil)
		return
	}

	queued, err := h.rebuilds.EnqueueAll(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrRebuildQueueFull) {
			respondAPIError(w, r, http.StatusServiceUnavailable, &models.APIError{
				Code:    codeRebuildQueue,
				Message: "Rebuild queue is full",
				Details: map[string]interface{}{"queued": queued},
			}, err)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "Failed to list products", err)
		return
	}

	respondSuccess(w, r, http.StatusAccepted, &models.BulkRebuildResponse{Queued: queued}, start, false)
}
