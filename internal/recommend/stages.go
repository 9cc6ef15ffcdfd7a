// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/sillage/internal/models"
)

// Stage names, also used as metric labels and breaker names.
const (
	StageSimilar     = "similar"
	StageCoPurchase  = "co_purchase"
	StageRecentViews = "recent_views"
	StagePopular     = "popular"
)

// Accumulated is a read-only view of the candidates collected so far.
type Accumulated interface {
	// Seen reports whether id is already collected or excluded.
	Seen(id int64) bool

	// Remaining is how many more products the request needs.
	Remaining() int

	// Size is how many products have been collected.
	Size() int
}

// FetchFunc produces candidates for one stage. Returned products may include
// ones already seen; the pipeline drops them.
type FetchFunc func(ctx context.Context, q Query, acc Accumulated) ([]models.Product, error)

// Stage is one candidate source in the pipeline.
type Stage struct {
	Name  string
	Fetch FetchFunc
}

// DefaultStages returns the candidate sources in priority order.
func DefaultStages(catalog Catalog, sims SimilarityStore, views ViewStore, coPurchase *CoPurchaseAggregator, recentViews int) []Stage {
	return []Stage{
		SimilarStage(catalog, sims),
		CoPurchaseStage(coPurchase),
		RecentViewStage(catalog, sims, views, recentViews),
		PopularStage(catalog),
	}
}

// SimilarStage yields the stored similarities of the anchor product.
func SimilarStage(catalog Catalog, sims SimilarityStore) Stage {
	return Stage{
		Name: StageSimilar,
		Fetch: func(ctx context.Context, q Query, acc Accumulated) ([]models.Product, error) {
			if q.ProductID == 0 {
				return nil, nil
			}
			records, err := sims.GetSimilarities(ctx, q.ProductID)
			if err != nil {
				return nil, fmt.Errorf("get similarities for %d: %w", q.ProductID, err)
			}
			return expandRecords(ctx, catalog, records, acc, nil, acc.Remaining())
		},
	}
}

// CoPurchaseStage yields products frequently bought with the anchor product.
func CoPurchaseStage(agg *CoPurchaseAggregator) Stage {
	return Stage{
		Name: StageCoPurchase,
		Fetch: func(ctx context.Context, q Query, acc Accumulated) ([]models.Product, error) {
			if q.ProductID == 0 {
				return nil, nil
			}
			// Asking for the full limit leaves room for overlap with the
			// products collected so far.
			return agg.TopCoPurchased(ctx, q.ProductID, q.Limit)
		},
	}
}

// RecentViewStage expands the shopper's latest views through their stored
// similarities, most recent view first, until the request is filled.
func RecentViewStage(catalog Catalog, sims SimilarityStore, views ViewStore, recent int) Stage {
	return Stage{
		Name: StageRecentViews,
		Fetch: func(ctx context.Context, q Query, acc Accumulated) ([]models.Product, error) {
			if q.UserID == "" || recent <= 0 {
				return nil, nil
			}
			viewed, err := views.GetRecentViews(ctx, q.UserID, recent)
			if err != nil {
				return nil, fmt.Errorf("get recent views: %w", err)
			}

			need := acc.Remaining()
			picked := make(map[int64]struct{})
			var out []models.Product
			for _, productID := range viewed {
				if len(out) >= need {
					break
				}
				records, err := sims.GetSimilarities(ctx, productID)
				if err != nil {
					return nil, fmt.Errorf("get similarities for viewed %d: %w", productID, err)
				}
				more, err := expandRecords(ctx, catalog, records, acc, picked, need-len(out))
				if err != nil {
					return nil, err
				}
				out = append(out, more...)
			}
			return out, nil
		},
	}
}

// PopularStage yields the most viewed active, in-stock products.
func PopularStage(catalog Catalog) Stage {
	return Stage{
		Name: StagePopular,
		Fetch: func(ctx context.Context, q Query, acc Accumulated) ([]models.Product, error) {
			// One extra row covers the anchor product, which is always excluded.
			n := q.Limit
			if n < math.MaxInt {
				n++
			}
			products, err := catalog.ListActiveInStockByViewCount(ctx, n)
			if err != nil {
				return nil, fmt.Errorf("list popular products: %w", err)
			}
			return products, nil
		},
	}
}

// expandRecords maps similarity targets to active products, skipping ids
// that are already seen or picked, and stops after want products.
// picked may be nil; when set it is updated with every product returned.
func expandRecords(ctx context.Context, catalog Catalog, records []models.SimilarityRecord, acc Accumulated, picked map[int64]struct{}, want int) ([]models.Product, error) {
	var out []models.Product
	for _, r := range records {
		if len(out) >= want {
			break
		}
		id := r.TargetProductID
		if acc.Seen(id) {
			continue
		}
		if picked != nil {
			if _, dup := picked[id]; dup {
				continue
			}
		}
		p, err := catalog.GetProduct(ctx, id)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			return nil, fmt.Errorf("load product %d: %w", id, err)
		}
		if !p.Active {
			continue
		}
		if picked != nil {
			picked[id] = struct{}{}
		}
		out = append(out, *p)
	}
	return out, nil
}
