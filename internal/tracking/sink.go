// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package tracking

import (
	"context"

	"github.com/tomtom215/sillage/internal/models"
	"github.com/tomtom215/sillage/internal/recommend"
)

// ViewSink receives fully resolved view events.
type ViewSink interface {
	Write(ctx context.Context, event models.ViewEvent) error
}

// EventAppender is a view store that accepts complete events, keeping the
// event id and timestamp assigned by the tracker.
type EventAppender interface {
	AppendViewEvent(ctx context.Context, event models.ViewEvent) error
}

// StoreSink writes events directly to a view store.
type StoreSink struct {
	store recommend.ViewStore
}

// NewStoreSink creates a sink over store.
func NewStoreSink(store recommend.ViewStore) *StoreSink {
	return &StoreSink{store: store}
}

// Write appends the event, preserving its id and time when the store can.
func (s *StoreSink) Write(ctx context.Context, event models.ViewEvent) error {
	if appender, ok := s.store.(EventAppender); ok {
		return appender.AppendViewEvent(ctx, event)
	}
	return s.store.AppendView(ctx, event.ProductID, event.UserID, event.SessionID)
}
