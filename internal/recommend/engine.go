// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sillage/internal/cache"
	"github.com/tomtom215/sillage/internal/models"
)

// Dependencies are the data sources and sinks the engine reads and writes.
type Dependencies struct {
	Catalog      Catalog
	Orders       OrderReader
	Similarities SimilarityStore
	Views        ViewStore

	// Tracker receives view events. Nil disables view tracking.
	Tracker ViewRecorder

	// Cache memoizes recommendation results. Nil creates a cache with
	// DefaultTTL on the system clock.
	Cache *cache.Cache[[]models.Product]
}

// Engine is the entry point for recommendations, view tracking and
// similarity rebuilds. It is safe for concurrent use.
type Engine struct {
	pipeline *Pipeline
	builder  *Builder
	tracker  ViewRecorder
	cache    *cache.Cache[[]models.Product]
	logger   zerolog.Logger
}

// NewEngine wires the pipeline and builder over deps.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Catalog == nil || deps.Orders == nil || deps.Similarities == nil || deps.Views == nil {
		return nil, errors.New("catalog, orders, similarities and views are required")
	}

	results := deps.Cache
	if results == nil {
		results = cache.New[[]models.Product]("recommendations", cache.DefaultTTL, cache.SystemClock{})
	}

	coPurchase := NewCoPurchaseAggregator(deps.Orders, deps.Catalog)
	stages := DefaultStages(deps.Catalog, deps.Similarities, deps.Views, coPurchase, cfg.RecentViews)

	return &Engine{
		pipeline: NewPipeline(stages, results, cfg, logger),
		builder:  NewBuilder(deps.Catalog, deps.Similarities, cfg, logger),
		tracker:  deps.Tracker,
		cache:    results,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend returns up to q.Limit products for the request.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, q Query) (*Result, error) {
	return e.pipeline.Recommend(ctx, q)
}

// TrackView records that a product was viewed. It never blocks or fails.
func (e *Engine) TrackView(productID int64, userID, clientKey string) {
	if e.tracker == nil {
		return
	}
	e.tracker.Record(productID, userID, clientKey)
}

// RebuildSimilarities recomputes the similarity records of productID.
// On success the recommendation cache is cleared so new edges are served
// before the TTL would otherwise expire them.
func (e *Engine) RebuildSimilarities(ctx context.Context, productID int64) ([]models.SimilarityRecord, error) {
	records, err := e.builder.Rebuild(ctx, productID)
	if err != nil {
		return nil, err
	}
	if dropped := e.cache.Clear(); dropped > 0 {
		e.logger.Debug().Int64("product_id", productID).Int("dropped", dropped).Msg("recommendation cache cleared after rebuild")
	}
	return records, nil
}

// InvalidateRecommendation drops the cached result for q.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (e *Engine) InvalidateRecommendation(q Query) bool {
	return e.pipeline.Invalidate(q)
}

// Cache returns the recommendation cache, for the sweeper and stats.
func (e *Engine) Cache() *cache.Cache[[]models.Product] {
	return e.cache
}
