// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/sillage/internal/breaker"
	"github.com/tomtom215/sillage/internal/cache"
	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/metrics"
	"github.com/tomtom215/sillage/internal/models"
)

// collector folds stage output into a deduplicated, limit-bounded list.
// Earlier stages win; later stages only append.
type collector struct {
	limit int
	seen  map[int64]struct{}
	out   []models.Product
}

// sizeHint bounds preallocation; larger results grow by append.
const sizeHint = 64

func newCollector(limit int, exclude int64) *collector {
	c := &collector{
		limit: limit,
		seen:  make(map[int64]struct{}, min(limit, sizeHint)+1),
		out:   make([]models.Product, 0, min(limit, sizeHint)),
	}
	if exclude != 0 {
		c.seen[exclude] = struct{}{}
	}
	return c
}

func (c *collector) Seen(id int64) bool {
	_, ok := c.seen[id]
	return ok
}

func (c *collector) Remaining() int { return c.limit - len(c.out) }

func (c *collector) Size() int { return len(c.out) }

func (c *collector) full() bool { return len(c.out) >= c.limit }

// take appends unseen products until the limit and returns how many were accepted.
func (c *collector) take(products []models.Product) int {
	accepted := 0
	for i := range products {
		if c.full() {
			break
		}
		id := products[i].ID
		if _, dup := c.seen[id]; dup {
			continue
		}
		c.seen[id] = struct{}{}
		c.out = append(c.out, products[i])
		accepted++
	}
	return accepted
}

// Pipeline blends candidate stages and memoizes results in a cache.
// It is safe for concurrent use.
type Pipeline struct {
	stages       []Stage
	breakers     map[string]*breaker.Breaker[[]models.Product]
	cache        *cache.Cache[[]models.Product]
	stageTimeout time.Duration
	group        singleflight.Group
	logger       zerolog.Logger
}

// NewPipeline creates a pipeline over stages, run in the order given.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(stages []Stage, results *cache.Cache[[]models.Product], cfg *Config, logger zerolog.Logger) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	breakers := make(map[string]*breaker.Breaker[[]models.Product], len(stages))
	for _, st := range stages {
		breakers[st.Name] = breaker.New[[]models.Product]("recommend-"+st.Name, cfg.Breaker)
	}
	return &Pipeline{
		stages:       stages,
		breakers:     breakers,
		cache:        results,
		stageTimeout: cfg.StageTimeout,
		logger:       logger.With().Str("component", "recommend_pipeline").Logger(),
	}
}

// CacheKey returns the cache key for q.
func CacheKey(q Query) string {
	return cache.GenerateKey("recommend", q)
}

// Recommend returns at most q.Limit distinct products.
//
// A negative limit fails with ErrInvalidLimit. A zero limit returns an empty
// list without touching the cache. Stage failures never surface here.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (p *Pipeline) Recommend(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()

	if q.Limit < 0 {
		metrics.RecordRecommendation("invalid", time.Since(start))
		return nil, ErrInvalidLimit
	}
	if q.Limit == 0 {
		return &Result{Products: []models.Product{}}, nil
	}

	key := CacheKey(q)
	if products, ok := p.cache.Get(key); ok {
		metrics.RecordRecommendation("cache_hit", time.Since(start))
		return &Result{Products: products, CacheHit: true}, nil
	}

	// Concurrent misses for one key share a single computation. It runs
	// detached from the first caller's cancellation; stage timeouts bound it.
	detached := context.WithoutCancel(ctx)
	v, _, _ := p.group.Do(key, func() (interface{}, error) {
		if products, ok := p.cache.Get(key); ok {
			return products, nil
		}
		products := p.compute(detached, q)
		if err := p.cache.Set(key, products); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to cache recommendations")
		}
		return products, nil
	})

	products := v.([]models.Product)
	metrics.RecordRecommendation("computed", time.Since(start))
	return &Result{Products: products}, nil
}

// Invalidate drops the cached result for q.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (p *Pipeline) Invalidate(q Query) bool {
	return p.cache.Invalidate(CacheKey(q))
}

//nolint:gocritic // hugeParam: q passed by value for immutability
func (p *Pipeline) compute(ctx context.Context, q Query) []models.Product {
	acc := newCollector(q.Limit, q.ProductID)

	for _, st := range p.stages {
		if acc.full() {
			break
		}
		candidates := p.runStage(ctx, st, q, acc)
		accepted := acc.take(candidates)
		metrics.RecordStage(st.Name, accepted)
	}

	p.logger.Debug().
		Int64("product_id", q.ProductID).
		Bool("has_user", q.UserID != "").
		Int("limit", q.Limit).
		Int("returned", acc.Size()).
		Msg("recommendations computed")

	return acc.out
}

// runStage executes one stage under its breaker and timeout. Any failure
// yields no candidates.
//
//nolint:gocritic // hugeParam: q passed by value for immutability
func (p *Pipeline) runStage(ctx context.Context, st Stage, q Query, acc Accumulated) []models.Product {
	stageCtx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	fetch := func() ([]models.Product, error) {
		return st.Fetch(stageCtx, q, acc)
	}

	var (
		products []models.Product
		err      error
	)
	if br, ok := p.breakers[st.Name]; ok {
		products, err = br.Execute(fetch)
	} else {
		products, err = fetch()
	}
	if err == nil {
		return products
	}

	reason := "error"
	switch {
	case breaker.IsRejected(err):
		reason = "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	}
	metrics.RecordStageFailure(st.Name, reason)
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("stage", st.Name).
		Str("reason", reason).
		Int64("product_id", q.ProductID).
		Msg("recommendation stage failed, continuing without it")
	return nil
}
