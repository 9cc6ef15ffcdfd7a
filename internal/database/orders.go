// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sillage/internal/models"
)

// CreateOrder stores an order and its items atomically.
func (db *DB) CreateOrder(ctx context.Context, order models.Order) (err error) {
	if order.ID <= 0 {
		return fmt.Errorf("%w: order id must be positive", ErrInvalidRecord)
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order %d has no items", ErrInvalidRecord, order.ID)
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	defer observe("insert", "orders", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	var userID any
	if order.UserID != "" {
		userID = order.UserID
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, created_at) VALUES (?, ?, ?)`,
		order.ID, userID, order.CreatedAt); err != nil {
		return fmt.Errorf("insert order %d: %w", order.ID, err)
	}

	for _, item := range order.Items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity) VALUES (?, ?, ?)`,
			order.ID, item.ProductID, qty); err != nil {
			return fmt.Errorf("insert order item %d/%d: %w", order.ID, item.ProductID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit order %d: %w", order.ID, err)
	}
	return nil
}

// ListOrderIDsContainingProduct returns the ids of every order that
// includes productID, ascending.
func (db *DB) ListOrderIDsContainingProduct(ctx context.Context, productID int64) (_ []int64, err error) {
	defer observe("select", "order_items", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT order_id FROM order_items WHERE product_id = ? ORDER BY order_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("query orders for product %d: %w", productID, err)
	}
	defer closeWithLog(rows, "rows")

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order ids: %w", err)
	}
	return ids, nil
}

// ListOtherProductsInOrders counts, for each product other than
// excludeProductID, the number of distinct orders among orderIDs that
// contain it. Results are ordered by count descending then product id.
func (db *DB) ListOtherProductsInOrders(ctx context.Context, orderIDs []int64, excludeProductID int64) (_ []models.CoPurchaseCount, err error) {
	if len(orderIDs) == 0 {
		return []models.CoPurchaseCount{}, nil
	}

	defer observe("select", "order_items", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	args := make([]any, 0, len(orderIDs)+1)
	for _, id := range orderIDs {
		args = append(args, id)
	}
	args = append(args, excludeProductID)

	query := fmt.Sprintf(`
		SELECT product_id, COUNT(DISTINCT order_id) AS orders
		FROM order_items
		WHERE order_id IN (%s) AND product_id <> ?
		GROUP BY product_id
		ORDER BY orders DESC, product_id ASC`, placeholders(len(orderIDs)))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query co-purchases: %w", err)
	}
	defer closeWithLog(rows, "rows")

	counts := make([]models.CoPurchaseCount, 0)
	for rows.Next() {
		var c models.CoPurchaseCount
		if err := rows.Scan(&c.ProductID, &c.Count); err != nil {
			return nil, fmt.Errorf("scan co-purchase: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate co-purchases: %w", err)
	}
	return counts, nil
}
