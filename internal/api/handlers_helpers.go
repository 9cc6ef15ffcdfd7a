// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/middleware"
	"github.com/tomtom215/sillage/internal/models"
	"github.com/tomtom215/sillage/internal/validation"
)

// sanitizeLogValue replaces control characters so request data cannot
// forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag hashes the body with FNV-1a.
func generateETag(data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return `"` + strconv.FormatUint(uint64(h.Sum32()), 16) + `"`
}

// respondSuccess wraps data in a success envelope stamped with the request
// id and the time since start.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, start time.Time, cached bool) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: metadataFor(r, start, cached),
	})
}

func metadataFor(r *http.Request, start time.Time, cached bool) models.Metadata {
	md := models.Metadata{Timestamp: time.Now().UTC(), Cached: cached}
	if r != nil {
		md.RequestID = middleware.GetRequestID(r.Context())
	}
	if !start.IsZero() {
		md.QueryTimeMS = time.Since(start).Milliseconds()
	}
	return md
}

// respondError sends an error response. err is logged, never returned to
// the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondAPIError(w, r, status, &models.APIError{Code: code, Message: message}, err)
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError, err error) {
	if err != nil {
		logger := logging.Logger()
		if r != nil {
			logger = *logging.Ctx(r.Context())
		}
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Str("code", sanitizeLogValue(apiErr.Code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: metadataFor(r, time.Time{}, false),
		Error:    apiErr,
	})
}

// validateRequest validates a struct using go-playground/validator.
// It returns nil when the struct is valid.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// paramError is a malformed path or query parameter.
func paramError(name, raw string) *models.APIError {
	return &models.APIError{
		Code:    codeValidation,
		Message: name + " must be an integer",
		Details: map[string]interface{}{"field": name, "value": sanitizeLogValue(raw)},
	}
}

// productIDParam reads the {id} path parameter. Ids must be positive.
func productIDParam(r *http.Request) (int64, *models.APIError) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, paramError("id", raw)
	}
	if id <= 0 {
		return 0, &models.APIError{
			Code:    codeValidation,
			Message: "id must be greater than 0",
			Details: map[string]interface{}{"field": "id", "value": id},
		}
	}
	return id, nil
}

// intQuery parses an integer query parameter. A missing parameter yields
// def; a present but malformed one is an error.
func intQuery(r *http.Request, key string, def int64) (int64, *models.APIError) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, paramError(key, raw)
	}
	return v, nil
}
