// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package api

// Error codes returned in APIError.Code.
const (
	codeValidation    = "VALIDATION_ERROR"
	codeNotFound      = "NOT_FOUND"
	codeRecommend     = "RECOMMENDATION_FAILED"
	codeRebuild       = "REBUILD_FAILED"
	codeRebuildQueue  = "REBUILD_QUEUE_FULL"
	codeUnavailable   = "SERVICE_UNAVAILABLE"
	codeDatabase      = "DATABASE_ERROR"
	codeInvalidBody   = "INVALID_REQUEST_BODY"
	codeNotConfigured = "NOT_CONFIGURED"
)
