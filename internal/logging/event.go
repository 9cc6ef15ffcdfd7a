// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EventLogger provides the fixed log lines of the view event pipeline.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger creates an event logger on the global logger.
func NewEventLogger() *EventLogger {
	return &EventLogger{logger: WithComponent("events")}
}

// NewEventLoggerWithLogger creates an event logger on a specific logger.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventLoggerWithLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// loggerWithContext returns a logger with context fields added.
func (e *EventLogger) loggerWithContext(ctx context.Context) *zerolog.Logger {
	logCtx := e.logger.With()
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		logCtx = logCtx.Str("correlation_id", correlationID)
	}
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}
	l := logCtx.Logger()
	return &l
}

// LogEventPublished logs a view event handed to the broker.
func (e *EventLogger) LogEventPublished(ctx context.Context, eventID, topic string) {
	e.loggerWithContext(ctx).Debug().
		Str("event_id", eventID).
		Str("topic", topic).
		Msg("view event published")
}

// LogEventProcessed logs a view event written to the store.
func (e *EventLogger) LogEventProcessed(ctx context.Context, eventID string, productID int64, elapsed time.Duration) {
	e.loggerWithContext(ctx).Debug().
		Str("event_id", eventID).
		Int64("product_id", productID).
		Dur("duration", elapsed).
		Msg("view event processed")
}

// LogEventFailed logs a view event whose write failed and will be retried.
func (e *EventLogger) LogEventFailed(ctx context.Context, eventID string, err error) {
	e.loggerWithContext(ctx).Warn().
		Str("event_id", eventID).
		Err(err).
		Msg("view event processing failed")
}

// LogEventRejected logs a message that can never be processed and is
// acknowledged without a write.
func (e *EventLogger) LogEventRejected(ctx context.Context, messageID string, err error) {
	e.loggerWithContext(ctx).Warn().
		Str("message_id", messageID).
		Err(err).
		Msg("malformed view event dropped")
}

// LogRouterStarted logs when the Watermill router starts.
func (e *EventLogger) LogRouterStarted(topic string) {
	e.logger.Info().Str("topic", topic).Msg("view event router started")
}

// LogRouterStopped logs when the Watermill router stops.
func (e *EventLogger) LogRouterStopped(topic string) {
	e.logger.Info().Str("topic", topic).Msg("view event router stopped")
}
