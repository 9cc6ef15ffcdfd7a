// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/models"
)

// AppendView records a product view at the current time.
func (db *DB) AppendView(ctx context.Context, productID int64, userID, sessionID string) error {
	return db.AppendViewEvent(ctx, models.ViewEvent{
		ProductID: productID,
		UserID:    userID,
		SessionID: sessionID,
	})
}

// AppendViewEvent stores a view event and bumps the product's view counter
// in the same transaction. Missing ids and timestamps are filled in. Views
// of unknown products are stored without touching any counter. Appending an
// event id that is already stored is a no-op.
func (db *DB) AppendViewEvent(ctx context.Context, event models.ViewEvent) (err error) {
	if event.ProductID <= 0 {
		return fmt.Errorf("%w: product id must be positive", ErrInvalidRecord)
	}
	if event.SessionID == "" {
		return fmt.Errorf("%w: session id is required", ErrInvalidRecord)
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.ViewedAt.IsZero() {
		event.ViewedAt = time.Now().UTC()
	}

	defer observe("insert", "product_views", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	for attempt := 1; ; attempt++ {
		err = db.appendViewTx(ctx, event)
		if err == nil || !isTransactionConflict(err) || attempt >= db.maxWriteRetries {
			return err
		}
		logging.Debug().
			Int64("product_id", event.ProductID).
			Int("attempt", attempt).
			Msg("View counter conflict, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(db.retryDelay * time.Duration(attempt)):
		}
	}
}

func (db *DB) appendViewTx(ctx context.Context, event models.ViewEvent) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin view transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	var userID any
	if event.UserID != "" {
		userID = event.UserID
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO product_views (id, product_id, user_id, session_id, viewed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.ProductID, userID, event.SessionID, event.ViewedAt)
	if err != nil {
		return fmt.Errorf("insert view: %w", err)
	}
	// Redelivered event: already stored and counted.
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		return tx.Commit()
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE products SET view_count = view_count + 1 WHERE id = ?`, event.ProductID); err != nil {
		return fmt.Errorf("increment view count of %d: %w", event.ProductID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit view: %w", err)
	}
	return nil
}

// GetRecentViews returns the product ids of the user's latest view events,
// most recent first. Repeated views of one product appear repeatedly.
func (db *DB) GetRecentViews(ctx context.Context, userID string, limit int) (_ []int64, err error) {
	if userID == "" || limit <= 0 {
		return []int64{}, nil
	}

	defer observe("select", "product_views", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT product_id
		FROM product_views
		WHERE user_id = ?
		ORDER BY viewed_at DESC, seq DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent views: %w", err)
	}
	defer closeWithLog(rows, "rows")

	ids := make([]int64, 0, min(limit, 64))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan view: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate views: %w", err)
	}
	return ids, nil
}
