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

	"github.com/rs/zerolog"
)

func TestGenerateIDs(t *testing.T) {
	if got := len(GenerateCorrelationID()); got != 8 {
		t.Errorf("correlation id length = %d, want 8", got)
	}
	a, b := GenerateRequestID(), GenerateRequestID()
	if len(a) != 36 || a == b {
		t.Errorf("request ids %q %q", a, b)
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no ids")
	}

	ctx = ContextWithCorrelationID(ctx, "corr1234")
	ctx = ContextWithRequestID(ctx, "req-5678")
	if got := CorrelationIDFromContext(ctx); got != "corr1234" {
		t.Errorf("correlation id = %q", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-5678" {
		t.Errorf("request id = %q", got)
	}
}

func TestCtx_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")

	Ctx(ctx).Info().Msg("hello")
	out := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"correlation_id":"corr-1"`, `"message":"hello"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}

	buf.Reset()
	CtxErr(ctx, errors.New("boom")).Msg("failed")
	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("CtxErr output = %s", buf.String())
	}
}

func TestCtx_NoFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	Ctx(ctx).Info().Msg("plain")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id: %s", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t, "info")
	l := WithComponent("tracker")
	l.Info().Msg("started")
	if !strings.Contains(buf.String(), `"component":"tracker"`) {
		t.Errorf("output = %s", buf.String())
	}
}
