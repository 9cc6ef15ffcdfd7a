// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	adapter := NewWatermillAdapterWithLogger(logger)

	adapter.Error("publish failed", errors.New("boom"), watermill.LogFields{"topic": "views"})
	out := buf.String()
	for _, want := range []string{`"level":"error"`, `"error":"boom"`, `"topic":"views"`, `"message":"publish failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Error output %s missing %s", out, want)
		}
	}

	buf.Reset()
	adapter.Info("subscriber started", nil)
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Errorf("Info should map to debug, got %s", buf.String())
	}

	buf.Reset()
	adapter.With(watermill.LogFields{"handler": "view-writer"}).Trace("tick", watermill.LogFields{"n": 1})
	out = buf.String()
	if !strings.Contains(out, `"handler":"view-writer"`) || !strings.Contains(out, `"level":"trace"`) {
		t.Errorf("With/Trace output = %s", out)
	}
}

func TestEventLogger(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLoggerWithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	ctx := ContextWithRequestID(context.Background(), "req-1")

	el.LogEventProcessed(ctx, "ev-1", 42, 3*time.Millisecond)
	out := buf.String()
	for _, want := range []string{`"event_id":"ev-1"`, `"product_id":42`, `"request_id":"req-1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("LogEventProcessed output %s missing %s", out, want)
		}
	}

	buf.Reset()
	el.LogEventRejected(context.Background(), "msg-9", errors.New("bad json"))
	if !strings.Contains(buf.String(), `"level":"warn"`) || !strings.Contains(buf.String(), `"message_id":"msg-9"`) {
		t.Errorf("LogEventRejected output = %s", buf.String())
	}
}
