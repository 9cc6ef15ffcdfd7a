// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package recommend

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/tomtom215/sillage/internal/models"
)

// memoryStore implements Catalog, OrderReader, SimilarityStore and ViewStore
// in memory, counting calls and returning injected errors.
type memoryStore struct {
	mu       sync.Mutex
	products map[int64]models.Product
	sims     map[int64][]models.SimilarityRecord
	orders   map[int64][]int64  // order id -> product ids
	views    map[string][]int64 // user id -> product ids, most recent first
	calls    map[string]int
	errs     map[string]error
}

func newMemoryStore(products ...models.Product) *memoryStore {
	m := &memoryStore{
		products: make(map[int64]models.Product),
		sims:     make(map[int64][]models.SimilarityRecord),
		orders:   make(map[int64][]int64),
		views:    make(map[string][]int64),
		calls:    make(map[string]int),
		errs:     make(map[string]error),
	}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memoryStore) record(method string) error {
	m.calls[method]++
	return m.errs[method]
}

func (m *memoryStore) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *memoryStore) setErr(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[method] = err
}

func (m *memoryStore) setSimilar(source int64, targets ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]models.SimilarityRecord, 0, len(targets))
	for i, t := range targets {
		records = append(records, models.SimilarityRecord{
			SourceProductID: source,
			TargetProductID: t,
			Score:           0.9 - float64(i)*0.05,
		})
	}
	m.sims[source] = records
}

func (m *memoryStore) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetProduct"); err != nil {
		return nil, err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return &p, nil
}

func (m *memoryStore) ListActiveProducts(_ context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListActiveProducts"); err != nil {
		return nil, err
	}
	var out []models.Product
	for _, p := range m.products {
		if p.Active {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Product) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m *memoryStore) ListActiveInStockByViewCount(_ context.Context, limit int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListActiveInStockByViewCount"); err != nil {
		return nil, err
	}
	var out []models.Product
	for _, p := range m.products {
		if p.Active && p.InStock() {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Product) int {
		if a.ViewCount != b.ViewCount {
			return int(b.ViewCount - a.ViewCount)
		}
		return int(a.ID - b.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) ListOrderIDsContainingProduct(_ context.Context, productID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListOrderIDsContainingProduct"); err != nil {
		return nil, err
	}
	var ids []int64
	for orderID, items := range m.orders {
		if slices.Contains(items, productID) {
			ids = append(ids, orderID)
		}
	}
	return ids, nil
}

func (m *memoryStore) ListOtherProductsInOrders(_ context.Context, orderIDs []int64, exclude int64) ([]models.CoPurchaseCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListOtherProductsInOrders"); err != nil {
		return nil, err
	}
	counts := make(map[int64]int)
	for _, orderID := range orderIDs {
		seen := make(map[int64]bool)
		for _, pid := range m.orders[orderID] {
			if pid == exclude || seen[pid] {
				continue
			}
			seen[pid] = true
			counts[pid]++
		}
	}
	out := make([]models.CoPurchaseCount, 0, len(counts))
	for pid, n := range counts {
		out = append(out, models.CoPurchaseCount{ProductID: pid, Count: n})
	}
	return out, nil
}

func (m *memoryStore) ReplaceSimilarities(_ context.Context, productID int64, records []models.SimilarityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ReplaceSimilarities"); err != nil {
		return err
	}
	m.sims[productID] = slices.Clone(records)
	return nil
}

func (m *memoryStore) GetSimilarities(_ context.Context, productID int64) ([]models.SimilarityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[fmt.Sprintf("GetSimilarities:%d", productID)]++
	if err := m.record("GetSimilarities"); err != nil {
		return nil, err
	}
	return slices.Clone(m.sims[productID]), nil
}

func (m *memoryStore) AppendView(_ context.Context, productID int64, userID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AppendView"); err != nil {
		return err
	}
	m.views[userID] = append([]int64{productID}, m.views[userID]...)
	return nil
}

func (m *memoryStore) GetRecentViews(_ context.Context, userID string, limit int) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetRecentViews"); err != nil {
		return nil, err
	}
	ids := m.views[userID]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return slices.Clone(ids), nil
}

// recordingTracker implements ViewRecorder.
type recordingTracker struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTracker) Record(productID int64, userID, clientKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("%d/%s/%s", productID, userID, clientKey))
}

func product(id int64, views int64) models.Product {
	return models.Product{
		ID:         id,
		CategoryID: "unisex",
		BrandID:    fmt.Sprintf("brand-%d", id),
		Price:      float64(50 + id),
		Notes:      []string{fmt.Sprintf("note-%d", id)},
		Active:     true,
		Stock:      5,
		ViewCount:  views,
	}
}

func ids(products []models.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
