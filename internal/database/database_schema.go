// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package database

import (
	"context"
	"fmt"
)

// product_similarities and order_items carry no primary key: a replace
// deletes and re-inserts the same (source, target) pairs inside one
// transaction, which DuckDB's ART index rejects as a duplicate.
var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS product_views_seq START 1`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT PRIMARY KEY,
		category_id VARCHAR NOT NULL,
		brand_id VARCHAR NOT NULL,
		price DOUBLE NOT NULL DEFAULT 0,
		notes VARCHAR NOT NULL DEFAULT '[]',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		stock INTEGER NOT NULL DEFAULT 0,
		view_count BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT PRIMARY KEY,
		user_id VARCHAR,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS product_similarities (
		source_product_id BIGINT NOT NULL,
		target_product_id BIGINT NOT NULL,
		score DOUBLE NOT NULL,
		computed_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_views (
		id VARCHAR PRIMARY KEY,
		seq BIGINT NOT NULL DEFAULT nextval('product_views_seq'),
		product_id BIGINT NOT NULL,
		user_id VARCHAR,
		session_id VARCHAR NOT NULL,
		viewed_at TIMESTAMP NOT NULL
	)`,
}

var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_similarities_source ON product_similarities(source_product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_views_user ON product_views(user_id)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (db *DB) createIndexes(ctx context.Context) error {
	for _, stmt := range indexStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
