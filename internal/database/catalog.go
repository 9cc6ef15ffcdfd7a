// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sillage/internal/models"
	"github.com/tomtom215/sillage/internal/recommend"
)

const productColumns = `id, category_id, brand_id, price, notes, active, stock, view_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p     models.Product
		notes string
	)
	if err := row.Scan(&p.ID, &p.CategoryID, &p.BrandID, &p.Price, &notes, &p.Active, &p.Stock, &p.ViewCount); err != nil {
		return p, err
	}
	if notes != "" {
		if err := json.Unmarshal([]byte(notes), &p.Notes); err != nil {
			return p, fmt.Errorf("decode notes of product %d: %w", p.ID, err)
		}
	}
	if p.Notes == nil {
		p.Notes = []string{}
	}
	return p, nil
}

func (db *DB) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer closeWithLog(rows, "rows")

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// GetProduct returns a product by id. Unknown ids yield an error wrapping
// recommend.ErrProductNotFound.
func (db *DB) GetProduct(ctx context.Context, id int64) (_ *models.Product, err error) {
	defer observe("select", "products", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, recommend.ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

// ListActiveProducts returns every active product ordered by id.
func (db *DB) ListActiveProducts(ctx context.Context) (_ []models.Product, err error) {
	defer observe("select", "products", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	return db.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE active ORDER BY id`)
}

// ListActiveInStockByViewCount returns up to limit active products with
// stock, most viewed first and ties by ascending id.
func (db *DB) ListActiveInStockByViewCount(ctx context.Context, limit int) (_ []models.Product, err error) {
	if limit <= 0 {
		return []models.Product{}, nil
	}
	defer observe("select", "products", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	return db.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE active AND stock > 0
		ORDER BY view_count DESC, id ASC
		LIMIT ?`, limit)
}

// UpsertProduct inserts or updates a catalog entry. The view counter of an
// existing product is preserved.
func (db *DB) UpsertProduct(ctx context.Context, p models.Product) (err error) {
	if p.ID <= 0 {
		return fmt.Errorf("%w: product id must be positive", ErrInvalidRecord)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: product %d has negative price", ErrInvalidRecord, p.ID)
	}
	notes := p.Notes
	if notes == nil {
		notes = []string{}
	}
	encoded, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}

	defer observe("upsert", "products", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO products (id, category_id, brand_id, price, notes, active, stock, view_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			category_id = excluded.category_id,
			brand_id = excluded.brand_id,
			price = excluded.price,
			notes = excluded.notes,
			active = excluded.active,
			stock = excluded.stock`,
		p.ID, p.CategoryID, p.BrandID, p.Price, string(encoded), p.Active, p.Stock, p.ViewCount)
	if err != nil {
		return fmt.Errorf("upsert product %d: %w", p.ID, err)
	}
	return nil
}
