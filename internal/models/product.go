// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package models

import "time"

// Product is a catalog entry as seen by the recommendation engine.
// The engine never writes products; it only reads them.
type Product struct {
	// ID is the catalog identifier. Valid ids are positive.
	ID int64 `json:"id"`

	// CategoryID groups products into departments (e.g. "men", "women").
	CategoryID string `json:"category_id"`

	// BrandID identifies the manufacturer.
	BrandID string `json:"brand_id"`

	// Price is the list price. Never negative.
	Price float64 `json:"price"`

	// Notes is the ordered list of fragrance or attribute notes. May be empty.
	Notes []string `json:"notes"`

	// Active is false for products withdrawn from sale.
	Active bool `json:"active"`

	// Stock is the quantity on hand.
	Stock int `json:"stock"`

	// ViewCount is the lifetime number of product page views.
	ViewCount int64 `json:"view_count"`
}

// InStock reports whether the product can currently be bought.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// SimilarityRecord is a directed, scored edge between two products.
// SourceProductID never equals TargetProductID and Score is within [0,1].
type SimilarityRecord struct {
	SourceProductID int64     `json:"source_product_id"`
	TargetProductID int64     `json:"target_product_id"`
	Score           float64   `json:"score"`
	ComputedAt      time.Time `json:"computed_at,omitempty"`
}

// CoPurchaseCount is the number of orders in which ProductID appeared
// alongside a reference product. Derived on demand and never persisted.
type CoPurchaseCount struct {
	ProductID int64 `json:"product_id"`
	Count     int   `json:"count"`
}

// ViewEvent records a single product page view.
type ViewEvent struct {
	ID        string    `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    string    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}
