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

// validateSimilarities rejects records that do not belong to productID or
// that violate the score range.
func validateSimilarities(productID int64, records []models.SimilarityRecord) error {
	for _, r := range records {
		if r.SourceProductID != productID {
			return fmt.Errorf("%w: record source %d does not match product %d", ErrInvalidRecord, r.SourceProductID, productID)
		}
		if r.TargetProductID == productID {
			return fmt.Errorf("%w: product %d cannot be similar to itself", ErrInvalidRecord, productID)
		}
		if r.Score < 0 || r.Score > 1 {
			return fmt.Errorf("%w: score %v out of range", ErrInvalidRecord, r.Score)
		}
	}
	return nil
}

// ReplaceSimilarities atomically swaps every record of productID for
// records. On failure the previous records remain.
func (db *DB) ReplaceSimilarities(ctx context.Context, productID int64, records []models.SimilarityRecord) (err error) {
	if err := validateSimilarities(productID, records); err != nil {
		return err
	}

	defer observe("replace", "product_similarities", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin similarity transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM product_similarities WHERE source_product_id = ?`, productID); err != nil {
		return fmt.Errorf("delete similarities of %d: %w", productID, err)
	}

	now := time.Now().UTC()
	for _, r := range records {
		computedAt := r.ComputedAt
		if computedAt.IsZero() {
			computedAt = now
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO product_similarities (source_product_id, target_product_id, score, computed_at)
			VALUES (?, ?, ?, ?)`,
			productID, r.TargetProductID, r.Score, computedAt); err != nil {
			return fmt.Errorf("insert similarity %d->%d: %w", productID, r.TargetProductID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit similarities of %d: %w", productID, err)
	}
	return nil
}

// GetSimilarities returns the records of productID, best score first with
// ties broken by ascending target id.
func (db *DB) GetSimilarities(ctx context.Context, productID int64) (_ []models.SimilarityRecord, err error) {
	defer observe("select", "product_similarities", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT source_product_id, target_product_id, score, computed_at
		FROM product_similarities
		WHERE source_product_id = ?
		ORDER BY score DESC, target_product_id ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("query similarities of %d: %w", productID, err)
	}
	defer closeWithLog(rows, "rows")

	records := make([]models.SimilarityRecord, 0)
	for rows.Next() {
		var r models.SimilarityRecord
		if err := rows.Scan(&r.SourceProductID, &r.TargetProductID, &r.Score, &r.ComputedAt); err != nil {
			return nil, fmt.Errorf("scan similarity: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similarities: %w", err)
	}
	return records, nil
}
