// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/sillage/internal/logging"
)

// RouterConfig holds configuration for the Watermill router.
type RouterConfig struct {
	// Topic is the subscribed topic.
	Topic string

	// CloseTimeout is how long running handlers get to finish on shutdown.
	CloseTimeout time.Duration

	// Retry configuration for store errors.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// ThrottlePerSecond caps handled messages per second. Zero disables.
	ThrottlePerSecond int64
}

// DefaultRouterConfig returns production defaults for topic.
func DefaultRouterConfig(topic string) RouterConfig {
	return RouterConfig{
		Topic:                topic,
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      5,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// Router consumes view events and hands them to a ViewWriter. It is a
// suture service: each Serve builds a fresh Watermill router, so a restart
// after a failure resubscribes cleanly.
type Router struct {
	cfg        RouterConfig
	subscriber message.Subscriber
	writer     *ViewWriter
	logger     watermill.LoggerAdapter
	events     *logging.EventLogger

	readyOnce sync.Once
	ready     chan struct{}
}

// NewRouter creates a router over subscriber. The subscriber stays open
// when the router stops; its owner closes it.
func NewRouter(cfg *RouterConfig, subscriber message.Subscriber, writer *ViewWriter, logger watermill.LoggerAdapter) (*Router, error) {
	if cfg == nil || cfg.Topic == "" {
		return nil, errors.New("router topic is required")
	}
	if subscriber == nil || writer == nil {
		return nil, errors.New("subscriber and writer are required")
	}
	if logger == nil {
		logger = logging.NewWatermillAdapter()
	}
	return &Router{
		cfg:        *cfg,
		subscriber: subscriber,
		writer:     writer,
		logger:     logger,
		events:     logging.NewEventLogger(),
		ready:      make(chan struct{}),
	}, nil
}

// Serve runs the router until ctx is canceled.
func (r *Router) Serve(ctx context.Context) error {
	wm, err := r.build()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-wm.Running():
			r.readyOnce.Do(func() { close(r.ready) })
		case <-ctx.Done():
		}
	}()

	r.events.LogRouterStarted(r.cfg.Topic)
	runErr := wm.Run(ctx)
	r.events.LogRouterStopped(r.cfg.Topic)

	if runErr != nil {
		return fmt.Errorf("view event router: %w", runErr)
	}
	return ctx.Err()
}

// Ready is closed once the first run has subscribed.
func (r *Router) Ready() <-chan struct{} {
	return r.ready
}

// String implements fmt.Stringer for suture logs.
func (r *Router) String() string {
	return "view-event-router"
}

// build assembles the router. Middleware order, outermost first:
// Recoverer, Retry, Throttle.
func (r *Router) build() (*message.Router, error) {
	wm, err := message.NewRouter(message.RouterConfig{CloseTimeout: r.cfg.CloseTimeout}, r.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wm.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      r.cfg.RetryMaxRetries,
		InitialInterval: r.cfg.RetryInitialInterval,
		MaxInterval:     r.cfg.RetryMaxInterval,
		Multiplier:      r.cfg.RetryMultiplier,
		Logger:          r.logger,
	}
	wm.AddMiddleware(retry.Middleware)

	if r.cfg.ThrottlePerSecond > 0 {
		wm.AddMiddleware(middleware.NewThrottle(r.cfg.ThrottlePerSecond, time.Second).Middleware)
	}

	wm.AddConsumerHandler("view-writer", r.cfg.Topic, keepOpen{r.subscriber}, r.writer.Handle)
	return wm, nil
}

// keepOpen stops the Watermill router from closing a shared subscriber.
type keepOpen struct {
	message.Subscriber
}

func (keepOpen) Close() error { return nil }
