// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/sillage/internal/models"
)

// ErrRebuildQueueFull is returned when the rebuild queue cannot take more ids.
var ErrRebuildQueueFull = errors.New("rebuild queue is full")

// Rebuilder recomputes the stored similarities of one product.
type Rebuilder interface {
	RebuildSimilarities(ctx context.Context, productID int64) ([]models.SimilarityRecord, error)
}

// ProductLister lists the products a bulk rebuild covers.
type ProductLister interface {
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
}

// RebuildConfig controls queue size and throughput.
type RebuildConfig struct {
	// RatePerSecond is the sustained number of rebuilds per second.
	RatePerSecond float64

	// Burst is how many rebuilds may run back to back.
	Burst int

	// QueueSize bounds the ids waiting to be rebuilt.
	QueueSize int

	// Timeout bounds a single rebuild.
	Timeout time.Duration
}

// DefaultRebuildConfig returns production defaults.
func DefaultRebuildConfig() RebuildConfig {
	return RebuildConfig{RatePerSecond: 20, Burst: 5, QueueSize: 10000, Timeout: 30 * time.Second}
}

// RebuildStats counts rebuild outcomes since start.
type RebuildStats struct {
	Enqueued  int64 `json:"enqueued"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Pending   int   `json:"pending"`
}

// RebuildService rebuilds similarities in the background at a bounded
// rate so that a catalog-wide rebuild does not starve request traffic.
// Each failed rebuild is logged and counted; the queue keeps going.
type RebuildService struct {
	rebuilder Rebuilder
	products  ProductLister
	cfg       RebuildConfig
	queue     chan int64
	limiter   *rate.Limiter
	logger    zerolog.Logger

	enqueued  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewRebuildService creates the queue. Zero config fields take defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildService(rebuilder Rebuilder, products ProductLister, cfg RebuildConfig, logger zerolog.Logger) *RebuildService {
	d := DefaultRebuildConfig()
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = d.RatePerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = d.Burst
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = d.QueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	return &RebuildService{
		rebuilder: rebuilder,
		products:  products,
		cfg:       cfg,
		queue:     make(chan int64, cfg.QueueSize),
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:    logger.With().Str("service", "rebuild-queue").Logger(),
	}
}

// Enqueue adds ids without blocking. It returns how many were accepted and
// ErrRebuildQueueFull if any were turned away.
func (s *RebuildService) Enqueue(ids ...int64) (int, error) {
	accepted := 0
	for _, id := range ids {
		select {
		case s.queue <- id:
			accepted++
		default:
			s.enqueued.Add(int64(accepted))
			return accepted, fmt.Errorf("%w: accepted %d of %d", ErrRebuildQueueFull, accepted, len(ids))
		}
	}
	s.enqueued.Add(int64(accepted))
	return accepted, nil
}

// EnqueueAll queues every active product.
func (s *RebuildService) EnqueueAll(ctx context.Context) (int, error) {
	products, err := s.products.ListActiveProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active products: %w", err)
	}
	ids := make([]int64, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	return s.Enqueue(ids...)
}

// Stats returns the current counters.
func (s *RebuildService) Stats() RebuildStats {
	return RebuildStats{
		Enqueued:  s.enqueued.Load(),
		Completed: s.completed.Load(),
		Failed:    s.failed.Load(),
		Pending:   len(s.queue),
	}
}

// Serve implements suture.Service. Queued ids survive a restart.
func (s *RebuildService) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case id := <-s.queue:
			if err := s.limiter.Wait(ctx); err != nil {
				// Put it back for the next run; drop if the queue filled meanwhile.
				select {
				case s.queue <- id:
				default:
				}
				return ctx.Err()
			}
			s.rebuild(ctx, id)
		}
	}
}

func (s *RebuildService) rebuild(ctx context.Context, id int64) {
	rctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	records, err := s.rebuilder.RebuildSimilarities(rctx, id)
	if err != nil {
		s.failed.Add(1)
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("queued similarity rebuild failed")
		return
	}
	s.completed.Add(1)
	s.logger.Debug().
		Int64("product_id", id).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("queued similarity rebuild done")
}

// String implements fmt.Stringer.
func (s *RebuildService) String() string {
	return "rebuild-queue"
}
