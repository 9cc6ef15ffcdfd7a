// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

// Package validation validates HTTP request structs with
// go-playground/validator v10 and converts failures to the API's
// VALIDATION_ERROR payload.
//
// Field names in messages come from the json tag, so clients see the names
// they sent:
//
//	type recommendationRequest struct {
//	    Limit     int    `json:"limit" validate:"gte=0,lte=100"`
//	    ProductID int64  `json:"product_id" validate:"gte=0"`
//	    UserID    string `json:"user_id" validate:"omitempty,max=128,identifier"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Custom tags
//
//   - identifier: printable characters only, no whitespace. Used for user
//     ids, which end up in log lines and cache keys.
package validation
