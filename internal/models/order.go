// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package models

import "time"

// Order is a completed purchase. Only the set of products matters to the
// recommendation engine; quantities are kept for completeness.
type Order struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"user_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"items"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
