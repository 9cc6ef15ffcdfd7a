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

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/sillage/internal/breaker"
	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/metrics"
	"github.com/tomtom215/sillage/internal/models"
)

// ErrPublisherClosed is returned by Write after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// PublisherSink publishes view events to a topic. It implements the
// tracker's sink so the tracker never touches the database directly.
type PublisherSink struct {
	publisher message.Publisher
	topic     string
	breaker   *breaker.Breaker[struct{}]
	events    *logging.EventLogger

	mu     sync.RWMutex
	closed bool
}

// NewPublisherSink wraps publisher. A nil breaker publishes unguarded.
func NewPublisherSink(publisher message.Publisher, topic string, cb *breaker.Breaker[struct{}], events *logging.EventLogger) (*PublisherSink, error) {
	if publisher == nil {
		return nil, errors.New("publisher is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	if events == nil {
		events = logging.NewEventLogger()
	}
	return &PublisherSink{publisher: publisher, topic: topic, breaker: cb, events: events}, nil
}

// Write publishes event. The event id doubles as the JetStream
// deduplication id.
func (p *PublisherSink) Write(ctx context.Context, event models.ViewEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	msg, err := NewViewMessage(&event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(p.topic, "invalid").Inc()
		return err
	}
	msg.SetContext(ctx)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	if p.breaker != nil {
		_, err = p.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, p.publisher.Publish(p.topic, msg)
		})
	} else {
		err = p.publisher.Publish(p.topic, msg)
	}
	if err != nil {
		metrics.EventsPublished.WithLabelValues(p.topic, "failed").Inc()
		return fmt.Errorf("publish view event %s: %w", event.ID, err)
	}

	metrics.EventsPublished.WithLabelValues(p.topic, "success").Inc()
	p.events.LogEventPublished(ctx, event.ID, p.topic)
	return nil
}

// Close closes the underlying publisher. Later writes fail.
func (p *PublisherSink) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
