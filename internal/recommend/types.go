// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package recommend

import (
	"context"
	"errors"

	"github.com/tomtom215/sillage/internal/models"
)

var (
	// ErrInvalidLimit is returned by Recommend for a negative limit.
	ErrInvalidLimit = errors.New("limit must be non-negative")

	// ErrProductNotFound is returned (wrapped) by catalogs for unknown ids.
	ErrProductNotFound = errors.New("product not found")

	// ErrPartialReplace is returned by a SimilarityStore whose replace
	// removed the old records but failed to write the new ones.
	ErrPartialReplace = errors.New("similarity replace left no records")
)

// Catalog is read-only access to products.
type Catalog interface {
	// GetProduct returns the product or an error wrapping ErrProductNotFound.
	GetProduct(ctx context.Context, id int64) (*models.Product, error)

	// ListActiveProducts returns every active product.
	ListActiveProducts(ctx context.Context) ([]models.Product, error)

	// ListActiveInStockByViewCount returns active products with stock > 0,
	// most viewed first.
	ListActiveInStockByViewCount(ctx context.Context, limit int) ([]models.Product, error)
}

// OrderReader is read-only access to order history.
type OrderReader interface {
	ListOrderIDsContainingProduct(ctx context.Context, productID int64) ([]int64, error)

	// ListOtherProductsInOrders counts, for every product other than
	// excludeProductID, how many of the given orders contain it.
	ListOtherProductsInOrders(ctx context.Context, orderIDs []int64, excludeProductID int64) ([]models.CoPurchaseCount, error)
}

// SimilarityStore persists precomputed similarity edges.
type SimilarityStore interface {
	// ReplaceSimilarities swaps all records of productID for records.
	ReplaceSimilarities(ctx context.Context, productID int64, records []models.SimilarityRecord) error

	// GetSimilarities returns the records of productID, best score first.
	GetSimilarities(ctx context.Context, productID int64) ([]models.SimilarityRecord, error)
}

// ViewStore persists view events.
type ViewStore interface {
	AppendView(ctx context.Context, productID int64, userID, sessionID string) error

	// GetRecentViews returns viewed product ids, most recent first.
	GetRecentViews(ctx context.Context, userID string, limit int) ([]int64, error)
}

// ViewRecorder accepts view events without blocking the caller.
type ViewRecorder interface {
	Record(productID int64, userID, clientKey string)
}

// Query is a recommendation request.
type Query struct {
	// Limit is the maximum number of products returned.
	Limit int `json:"limit"`

	// ProductID anchors the request to a product page. Zero means absent.
	ProductID int64 `json:"product_id,omitempty"`

	// UserID identifies the shopper. Empty means anonymous.
	UserID string `json:"user_id,omitempty"`
}

// Result is the outcome of a recommendation request.
type Result struct {
	Products []models.Product `json:"products"`
	CacheHit bool             `json:"cache_hit"`
}
