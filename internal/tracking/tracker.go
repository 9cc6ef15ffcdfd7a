// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sillage/internal/metrics"
	"github.com/tomtom215/sillage/internal/models"
)

// Config sizes the tracker.
type Config struct {
	Workers      int
	QueueSize    int
	WriteTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Workers:      4,
		QueueSize:    1024,
		WriteTimeout: 5 * time.Second,
	}
}

// pendingView is a view accepted by Record but not yet resolved.
type pendingView struct {
	productID int64
	userID    string
	clientKey string
	viewedAt  time.Time
}

// Tracker queues view events and writes them from a worker pool.
// Record never blocks and never fails.
type Tracker struct {
	cfg      Config
	queue    chan pendingView
	sessions SessionResolver
	sink     ViewSink
	logger   zerolog.Logger
	now      func() time.Time
}

// NewTracker creates a tracker. Zero config fields take defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTracker(cfg Config, sessions SessionResolver, sink ViewSink, logger zerolog.Logger) *Tracker {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if sessions == nil {
		sessions = NewMemorySessions()
	}
	return &Tracker{
		cfg:      cfg,
		queue:    make(chan pendingView, cfg.QueueSize),
		sessions: sessions,
		sink:     sink,
		logger:   logger.With().Str("component", "tracker").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Record enqueues a view. When the queue is full the view is dropped.
func (t *Tracker) Record(productID int64, userID, clientKey string) {
	if productID <= 0 {
		metrics.RecordViewEvent("dropped")
		t.logger.Debug().Int64("product_id", productID).Msg("ignoring view of invalid product id")
		return
	}

	view := pendingView{
		productID: productID,
		userID:    userID,
		clientKey: clientKey,
		viewedAt:  t.now(),
	}

	select {
	case t.queue <- view:
		metrics.RecordViewEvent("queued")
		metrics.ViewQueueDepth.Set(float64(len(t.queue)))
	default:
		metrics.RecordViewEvent("dropped")
		t.logger.Warn().
			Int64("product_id", productID).
			Int("queue_size", t.cfg.QueueSize).
			Msg("view queue full, dropping view")
	}
}

// Pending returns the number of queued views.
func (t *Tracker) Pending() int {
	return len(t.queue)
}

// Serve implements suture.Service. It runs the worker pool until ctx is
// canceled, then writes whatever is still queued before returning.
func (t *Tracker) Serve(ctx context.Context) error {
	t.logger.Info().
		Int("workers", t.cfg.Workers).
		Int("queue_size", t.cfg.QueueSize).
		Msg("view tracker starting")

	var wg sync.WaitGroup
	for i := 0; i < t.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.work(ctx)
		}()
	}
	wg.Wait()

	drained := t.drain()
	t.logger.Info().Int("drained", drained).Msg("view tracker stopped")
	return ctx.Err()
}

func (t *Tracker) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case view := <-t.queue:
			metrics.ViewQueueDepth.Set(float64(len(t.queue)))
			t.process(ctx, view)
		}
	}
}

// drain writes remaining views on a fresh context after shutdown.
func (t *Tracker) drain() int {
	n := 0
	for {
		select {
		case view := <-t.queue:
			t.process(context.Background(), view)
			n++
		default:
			metrics.ViewQueueDepth.Set(0)
			return n
		}
	}
}

func (t *Tracker) process(parent context.Context, view pendingView) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), t.cfg.WriteTimeout)
	defer cancel()

	sessionID, err := t.sessions.Resolve(ctx, view.clientKey)
	if err != nil {
		metrics.RecordViewEvent("failed")
		t.logger.Warn().Err(err).Int64("product_id", view.productID).Msg("failed to resolve session")
		return
	}

	event := models.ViewEvent{
		ID:        uuid.New().String(),
		ProductID: view.productID,
		UserID:    view.userID,
		SessionID: sessionID,
		ViewedAt:  view.viewedAt,
	}

	if err := t.sink.Write(ctx, event); err != nil {
		metrics.RecordViewEvent("failed")
		t.logger.Warn().
			Err(err).
			Int64("product_id", view.productID).
			Str("session_id", sessionID).
			Msg("failed to write view event")
		return
	}
	metrics.RecordViewEvent("written")
}

// String implements fmt.Stringer for suture logging.
func (t *Tracker) String() string {
	return "view-tracker"
}
