// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/sillage/internal/breaker"
	"github.com/tomtom215/sillage/internal/config"
	"github.com/tomtom215/sillage/internal/database"
	"github.com/tomtom215/sillage/internal/events"
	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/tracking"
)

// memoryBuffer is the GoChannel output buffer per subscriber.
const memoryBuffer = 1024

// eventComponents holds the view event transport for lifecycle management.
// With the direct backend only sink is set.
type eventComponents struct {
	sink       tracking.ViewSink
	router     *events.Router
	publisher  *events.PublisherSink
	subscriber message.Subscriber
	server     *events.EmbeddedServer
	closeOnce  sync.Once
}

// initEvents builds the path from the tracker to the view store.
//
//   - direct: the tracker writes to DuckDB itself
//   - memory: the tracker publishes to a GoChannel, the router writes
//   - nats: the tracker publishes to JetStream, the router consumes it
func initEvents(ctx context.Context, cfg *config.Config, db *database.DB) (*eventComponents, error) {
	if cfg.Events.Backend == config.EventsDirect {
		logging.Info().Msg("View events written directly to the view store")
		return &eventComponents{sink: tracking.NewStoreSink(db)}, nil
	}

	wmLogger := logging.NewWatermillAdapter()
	eventLog := logging.NewEventLogger()
	comps := &eventComponents{}

	var (
		pub message.Publisher
		err error
	)
	switch cfg.Events.Backend {
	case config.EventsMemory:
		pubSub := events.NewMemoryPubSub(memoryBuffer, wmLogger)
		pub, comps.subscriber = pubSub, pubSub
	case config.EventsNATS:
		pub, err = comps.initNATS(ctx, &cfg.Events, wmLogger)
		if err != nil {
			comps.Close()
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported %s", describe("events", cfg.Events.Backend))
	}

	comps.publisher, err = events.NewPublisherSink(pub, cfg.Events.Topic, breaker.New[struct{}]("view-events", breaker.DefaultSettings()), eventLog)
	if err != nil {
		closeQuietly(pub)
		comps.Close()
		return nil, err
	}
	comps.sink = comps.publisher

	routerCfg := events.DefaultRouterConfig(cfg.Events.Topic)
	if cfg.Events.CloseTimeout > 0 {
		routerCfg.CloseTimeout = cfg.Events.CloseTimeout
	}
	comps.router, err = events.NewRouter(&routerCfg, comps.subscriber, events.NewViewWriter(db, cfg.Events.Topic, eventLog), wmLogger)
	if err != nil {
		comps.Close()
		return nil, err
	}

	logging.Info().
		Str("backend", cfg.Events.Backend).
		Str("topic", cfg.Events.Topic).
		Msg("View event transport initialized")
	return comps, nil
}

// initNATS starts the embedded server when configured, provisions the
// stream and creates the JetStream publisher and subscriber.
func (c *eventComponents) initNATS(ctx context.Context, ec *config.EventsConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	url := ec.NATSURL
	if ec.EmbeddedServer {
		srv, err := events.NewEmbeddedServer(&events.ServerConfig{
			Host:     "127.0.0.1",
			Port:     ec.EmbeddedPort,
			StoreDir: ec.StoreDir,
		})
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		c.server = srv
		url = srv.ClientURL()
		logging.Info().Str("url", url).Str("store_dir", ec.StoreDir).Msg("Embedded NATS server started")
	}

	natsCfg := events.DefaultNATSConfig(url, ec.Topic)
	if ec.QueueGroup != "" {
		natsCfg.QueueGroup = ec.QueueGroup
	}
	if ec.Subscribers > 0 {
		natsCfg.SubscribersCount = ec.Subscribers
	}
	if ec.CloseTimeout > 0 {
		natsCfg.CloseTimeout = ec.CloseTimeout
	}

	streamCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	info, err := events.EnsureStream(streamCtx, &natsCfg)
	cancel()
	if err != nil {
		return nil, err
	}
	logging.Info().
		Str("stream", info.Config.Name).
		Uint64("messages", info.State.Msgs).
		Msg("JetStream stream ready")

	pub, err := events.NewNATSPublisher(&natsCfg, logger)
	if err != nil {
		return nil, err
	}
	c.subscriber, err = events.NewNATSSubscriber(&natsCfg, logger)
	if err != nil {
		closeQuietly(pub)
		return nil, err
	}
	return pub, nil
}

// Close stops publishing, then closes the subscriber and the embedded
// server. The supervisor must have stopped the router and tracker first.
func (c *eventComponents) Close() {
	c.closeOnce.Do(func() {
		if c.publisher != nil {
			if err := c.publisher.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing view event publisher")
			}
		}
		if c.subscriber != nil {
			closeQuietly(c.subscriber)
		}
		if c.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := c.server.Shutdown(ctx); err != nil {
				logging.Warn().Err(err).Msg("Error shutting down embedded NATS")
			}
			cancel()
		}
	})
}

type closer interface{ Close() error }

func closeQuietly(c closer) {
	if err := c.Close(); err != nil {
		logging.Debug().Err(err).Msg("close failed")
	}
}
