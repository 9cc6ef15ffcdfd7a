// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/sillage/internal/metrics"
)

// queryTimeout bounds every store call that arrives without a deadline.
const queryTimeout = 30 * time.Second

// ensureContext creates a context with 30-second timeout if none provided
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), queryTimeout)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, queryTimeout)
	}
	return ctx, func() {}
}

// schemaContext returns the longer deadline used for DDL.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// observe records a query metric. Use with defer:
//
//	defer observe("select", "products", time.Now(), &err)
func observe(operation, table string, start time.Time, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// GetDatabasePath returns the path to the database file
func (db *DB) GetDatabasePath() string {
	return db.cfg.Path
}

// RecordCounts holds row counts of the main tables.
type RecordCounts struct {
	Products     int64 `json:"products"`
	Orders       int64 `json:"orders"`
	Similarities int64 `json:"similarities"`
	Views        int64 `json:"views"`
}

// GetRecordCounts returns the count of records in main tables
func (db *DB) GetRecordCounts(ctx context.Context) (RecordCounts, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var counts RecordCounts
	targets := []struct {
		table string
		dst   *int64
	}{
		{"products", &counts.Products},
		{"orders", &counts.Orders},
		{"product_similarities", &counts.Similarities},
		{"product_views", &counts.Views},
	}
	for _, t := range targets {
		// Table names come from the fixed list above.
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return counts, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return counts, nil
}
