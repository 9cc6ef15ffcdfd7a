// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tomtom215/sillage/internal/models"
)

// CoPurchaseAggregator finds products frequently bought together.
type CoPurchaseAggregator struct {
	orders  OrderReader
	catalog Catalog
}

// NewCoPurchaseAggregator creates an aggregator over order history.
func NewCoPurchaseAggregator(orders OrderReader, catalog Catalog) *CoPurchaseAggregator {
	return &CoPurchaseAggregator{orders: orders, catalog: catalog}
}

// TopCoPurchased returns up to limit active products that share orders with
// productID, ordered by the number of shared orders descending and then by
// ascending product id.
//
// A product with no order history yields an empty list and no error.
func (a *CoPurchaseAggregator) TopCoPurchased(ctx context.Context, productID int64, limit int) ([]models.Product, error) {
	if limit <= 0 {
		return []models.Product{}, nil
	}

	orderIDs, err := a.orders.ListOrderIDsContainingProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list orders for %d: %w", productID, err)
	}
	if len(orderIDs) == 0 {
		return []models.Product{}, nil
	}

	counts, err := a.orders.ListOtherProductsInOrders(ctx, orderIDs, productID)
	if err != nil {
		return nil, fmt.Errorf("count co-purchases for %d: %w", productID, err)
	}
	SortCoPurchaseCounts(counts)

	products := make([]models.Product, 0, min(limit, len(counts)))
	for _, c := range counts {
		if len(products) == limit {
			break
		}
		if c.ProductID == productID {
			continue
		}
		p, err := a.catalog.GetProduct(ctx, c.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			return nil, fmt.Errorf("load co-purchased product %d: %w", c.ProductID, err)
		}
		if !p.Active {
			continue
		}
		products = append(products, *p)
	}
	return products, nil
}

// SortCoPurchaseCounts orders counts by Count descending, then ProductID ascending.
func SortCoPurchaseCounts(counts []models.CoPurchaseCount) {
	slices.SortFunc(counts, func(x, y models.CoPurchaseCount) int {
		if x.Count != y.Count {
			return y.Count - x.Count
		}
		switch {
		case x.ProductID < y.ProductID:
			return -1
		case x.ProductID > y.ProductID:
			return 1
		default:
			return 0
		}
	})
}
