// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

// Package models defines the data structures shared between the storage layer,
// the recommendation engine and the HTTP API.
//
// Catalog types (Product, SimilarityRecord, CoPurchaseCount, ViewEvent) carry
// json tags so they can be cached, published as events and returned to clients
// without intermediate DTOs. API envelope types (APIResponse, Metadata,
// APIError) give every endpoint the same response shape.
package models
