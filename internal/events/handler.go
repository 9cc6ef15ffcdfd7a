// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package events

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/metrics"
	"github.com/tomtom215/sillage/internal/models"
)

// ViewAppender stores complete view events.
type ViewAppender interface {
	AppendViewEvent(ctx context.Context, event models.ViewEvent) error
}

// ViewWriter is the router handler that persists consumed view events.
type ViewWriter struct {
	store  ViewAppender
	topic  string
	events *logging.EventLogger
}

// NewViewWriter creates a handler writing to store.
func NewViewWriter(store ViewAppender, topic string, events *logging.EventLogger) *ViewWriter {
	if events == nil {
		events = logging.NewEventLogger()
	}
	return &ViewWriter{store: store, topic: topic, events: events}
}

// Handle implements message.NoPublishHandlerFunc. A malformed payload is
// acknowledged after logging; a store error is returned for retry.
func (w *ViewWriter) Handle(msg *message.Message) error {
	ctx := msg.Context()
	start := time.Now()

	event, err := DecodeViewMessage(msg)
	if err != nil {
		metrics.EventsConsumed.WithLabelValues(w.topic, "rejected").Inc()
		w.events.LogEventRejected(ctx, msg.UUID, err)
		return nil
	}

	if err := w.store.AppendViewEvent(ctx, event); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return err
		}
		metrics.EventsConsumed.WithLabelValues(w.topic, "failed").Inc()
		w.events.LogEventFailed(ctx, event.ID, err)
		return err
	}

	metrics.EventsConsumed.WithLabelValues(w.topic, "success").Inc()
	w.events.LogEventProcessed(ctx, event.ID, event.ProductID, time.Since(start))
	return nil
}
