// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/models"
)

// demoProducts is a small perfume catalog for local runs and demos.
var demoProducts = []models.Product{
	{ID: 1, CategoryID: "women", BrandID: "maison-lune", Price: 95, Notes: []string{"rose", "oud", "amber"}, Active: true, Stock: 12, ViewCount: 420},
	{ID: 2, CategoryID: "women", BrandID: "maison-lune", Price: 110, Notes: []string{"rose", "peony", "musk"}, Active: true, Stock: 8, ViewCount: 310},
	{ID: 3, CategoryID: "women", BrandID: "atelier-sel", Price: 88, Notes: []string{"rose", "oud", "saffron"}, Active: true, Stock: 5, ViewCount: 150},
	{ID: 4, CategoryID: "men", BrandID: "atelier-sel", Price: 72, Notes: []string{"vetiver", "cedar", "bergamot"}, Active: true, Stock: 20, ViewCount: 380},
	{ID: 5, CategoryID: "men", BrandID: "nord-fumee", Price: 64, Notes: []string{"vetiver", "tobacco", "leather"}, Active: true, Stock: 0, ViewCount: 260},
	{ID: 6, CategoryID: "men", BrandID: "nord-fumee", Price: 130, Notes: []string{"oud", "leather", "incense"}, Active: true, Stock: 3, ViewCount: 90},
	{ID: 7, CategoryID: "unisex", BrandID: "maison-lune", Price: 120, Notes: []string{"amber", "vanilla", "musk"}, Active: true, Stock: 7, ViewCount: 200},
	{ID: 8, CategoryID: "unisex", BrandID: "atelier-sel", Price: 55, Notes: []string{"bergamot", "neroli", "musk"}, Active: true, Stock: 30, ViewCount: 510},
	{ID: 9, CategoryID: "unisex", BrandID: "nord-fumee", Price: 99, Notes: []string{"incense", "amber", "cedar"}, Active: false, Stock: 4, ViewCount: 600},
	{ID: 10, CategoryID: "women", BrandID: "atelier-sel", Price: 79, Notes: []string{"jasmine", "peony", "musk"}, Active: true, Stock: 9, ViewCount: 140},
	{ID: 11, CategoryID: "men", BrandID: "maison-lune", Price: 85, Notes: []string{"bergamot", "vetiver", "amber"}, Active: true, Stock: 11, ViewCount: 175},
	{ID: 12, CategoryID: "unisex", BrandID: "nord-fumee", Price: 0, Notes: []string{}, Active: true, Stock: 50, ViewCount: 20},
}

// demoOrders pairs products that are commonly bought together.
var demoOrders = [][]int64{
	{1, 2},
	{1, 2, 7},
	{1, 3},
	{1, 7},
	{2, 10},
	{4, 11},
	{4, 5, 11},
	{4, 8},
	{6, 9},
	{8, 12},
	{8, 7},
}

// SeedDemoData loads the demo catalog and orders into an empty database.
// A database that already holds products is left untouched.
func (db *DB) SeedDemoData(ctx context.Context) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var existing int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&existing); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if existing > 0 {
		logging.Info().Int64("products", existing).Msg("Catalog not empty, skipping demo seed")
		return nil
	}

	logging.Info().Msg("Seeding database with demo catalog...")

	for _, p := range demoProducts {
		if err := db.UpsertProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %d: %w", p.ID, err)
		}
	}

	base := time.Now().UTC().Add(-30 * 24 * time.Hour)
	for i, productIDs := range demoOrders {
		order := models.Order{
			ID:        int64(i + 1),
			UserID:    fmt.Sprintf("demo-user-%d", i%4+1),
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}
		for _, pid := range productIDs {
			order.Items = append(order.Items, models.OrderItem{ProductID: pid, Quantity: 1})
		}
		if err := db.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("seed order %d: %w", order.ID, err)
		}
	}

	logging.Info().
		Int("products", len(demoProducts)).
		Int("orders", len(demoOrders)).
		Msg("Demo data seeded")
	return nil
}
