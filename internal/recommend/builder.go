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
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sillage/internal/metrics"
	"github.com/tomtom215/sillage/internal/models"
)

// Builder computes and persists the top-K similarity records of a product.
// Rebuilds for different products may run concurrently.
type Builder struct {
	catalog  Catalog
	store    SimilarityStore
	topK     int
	minScore float64
	now      func() time.Time
	logger   zerolog.Logger
}

// NewBuilder creates a similarity builder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuilder(catalog Catalog, store SimilarityStore, cfg *Config, logger zerolog.Logger) *Builder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Builder{
		catalog:  catalog,
		store:    store,
		topK:     cfg.TopK,
		minScore: cfg.MinScore,
		now:      time.Now,
		logger:   logger.With().Str("component", "similarity_builder").Logger(),
	}
}

// Rebuild scores productID against every other active product and replaces
// its stored records with the best TopK scoring at least MinScore.
//
// A store that reports ErrPartialReplace has left the product with no
// records. That is logged and Rebuild returns an empty result with a nil
// error. Any other persistence error is returned.
func (b *Builder) Rebuild(ctx context.Context, productID int64) ([]models.SimilarityRecord, error) {
	start := time.Now()

	source, err := b.catalog.GetProduct(ctx, productID)
	if err != nil {
		metrics.RecordRebuild("failure", 0, time.Since(start))
		return nil, fmt.Errorf("load product %d: %w", productID, err)
	}

	candidates, err := b.catalog.ListActiveProducts(ctx)
	if err != nil {
		metrics.RecordRebuild("failure", 0, time.Since(start))
		return nil, fmt.Errorf("list active products: %w", err)
	}

	records := b.rank(*source, candidates)

	if err := b.store.ReplaceSimilarities(ctx, productID, records); err != nil {
		if errors.Is(err, ErrPartialReplace) {
			b.logger.Warn().
				Err(err).
				Int64("product_id", productID).
				Int("records", len(records)).
				Msg("similarity replace incomplete, product has no similarities until next rebuild")
			metrics.RecordRebuild("soft_failure", 0, time.Since(start))
			return []models.SimilarityRecord{}, nil
		}
		metrics.RecordRebuild("failure", 0, time.Since(start))
		return nil, fmt.Errorf("replace similarities for %d: %w", productID, err)
	}

	metrics.RecordRebuild("success", len(records), time.Since(start))
	b.logger.Debug().
		Int64("product_id", productID).
		Int("candidates", len(candidates)).
		Int("stored", len(records)).
		Dur("duration", time.Since(start)).
		Msg("similarities rebuilt")

	return records, nil
}

// rank scores candidates against source and returns the records to keep.
//
//nolint:gocritic // hugeParam: source passed by value, it is only read
func (b *Builder) rank(source models.Product, candidates []models.Product) []models.SimilarityRecord {
	computedAt := b.now().UTC()
	records := make([]models.SimilarityRecord, 0, len(candidates))

	for i := range candidates {
		c := &candidates[i]
		if c.ID == source.ID {
			continue
		}
		raw := rawScore(source, *c)
		if !meetsThreshold(raw, b.minScore) {
			continue
		}
		records = append(records, models.SimilarityRecord{
			SourceProductID: source.ID,
			TargetProductID: c.ID,
			Score:           roundScore(raw),
			ComputedAt:      computedAt,
		})
	}

	slices.SortFunc(records, func(x, y models.SimilarityRecord) int {
		switch {
		case x.Score > y.Score:
			return -1
		case x.Score < y.Score:
			return 1
		case x.TargetProductID < y.TargetProductID:
			return -1
		case x.TargetProductID > y.TargetProductID:
			return 1
		default:
			return 0
		}
	})

	if len(records) > b.topK {
		records = records[:b.topK]
	}
	return records
}
