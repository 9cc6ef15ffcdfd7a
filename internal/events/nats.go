// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultStreamName holds every view event subject. Stream names may not
// contain dots, so it cannot be derived from the topic.
const DefaultStreamName = "VIEW_EVENTS"

// NATSConfig configures the JetStream transport.
type NATSConfig struct {
	URL              string
	StreamName       string
	Topic            string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	CloseTimeout     time.Duration
	MaxDeliver       int
	DuplicateWindow  time.Duration
	MaxAge           time.Duration
	ReconnectWait    time.Duration
}

// DefaultNATSConfig returns production defaults.
func DefaultNATSConfig(url, topic string) NATSConfig {
	return NATSConfig{
		URL:              url,
		StreamName:       DefaultStreamName,
		Topic:            topic,
		QueueGroup:       "view-writers",
		SubscribersCount: 2,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		MaxDeliver:       10,
		DuplicateWindow:  2 * time.Minute,
		MaxAge:           24 * time.Hour,
		ReconnectWait:    2 * time.Second,
	}
}

func connectionOptions(cfg *NATSConfig, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

// EnsureStream creates or updates the JetStream stream for the topic.
// Publishers and subscribers bind to it rather than auto-provisioning.
func EnsureStream(ctx context.Context, cfg *NATSConfig) (*jetstream.StreamInfo, error) {
	if cfg.StreamName == "" || cfg.Topic == "" {
		return nil, errors.New("stream name and topic are required")
	}

	nc, err := natsgo.Connect(cfg.URL, natsgo.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "Product view events",
		Subjects:    []string{cfg.Topic},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      cfg.MaxAge,
		Duplicates:  cfg.DuplicateWindow,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		Replicas:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("create stream %s: %w", cfg.StreamName, err)
	}
	return stream.Info(ctx)
}

// NewNATSPublisher creates a JetStream publisher with message id tracking.
func NewNATSPublisher(cfg *NATSConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: connectionOptions(cfg, logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	return pub, nil
}

// NewNATSSubscriber creates a durable queue subscriber bound to the stream.
func NewNATSSubscriber(cfg *NATSConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      connectionOptions(cfg, logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(cfg.StreamName),
				natsgo.MaxDeliver(cfg.MaxDeliver),
				natsgo.AckWait(cfg.AckWaitTimeout),
				natsgo.DeliverAll(),
			},
			DurablePrefix: cfg.QueueGroup,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	return sub, nil
}
