// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sillage/internal/logging"
)

// countingService fails failures times, then blocks until canceled.
type countingService struct {
	name     string
	failures int32
	starts   atomic.Int32
	running  chan struct{}
}

func newCountingService(name string, failures int32) *countingService {
	return &countingService{name: name, failures: failures, running: make(chan struct{}, 16)}
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.failures {
		return errors.New("simulated failure")
	}
	s.running <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func quietSlog() *slog.Logger {
	return slog.New(logging.NewSlogHandlerWithLogger(zerolog.Nop()))
}

func waitRunning(t *testing.T, s *countingService) {
	t.Helper()
	select {
	case <-s.running:
	case <-time.After(5 * time.Second):
		t.Fatalf("service %s never reached running state", s.name)
	}
}

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5 || cfg.FailureDecay != 30 {
		t.Errorf("failure settings = %v/%v", cfg.FailureThreshold, cfg.FailureDecay)
	}
	if cfg.FailureBackoff != 15*time.Second || cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("durations = %v/%v", cfg.FailureBackoff, cfg.ShutdownTimeout)
	}
}

func TestNewSupervisorTree_ZeroConfigTakesDefaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietSlog(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Config() != DefaultTreeConfig() {
		t.Errorf("Config() = %+v, want defaults", tree.Config())
	}
}

func TestSupervisorTree_RunsEveryLayer(t *testing.T) {
	tree, err := NewSupervisorTree(quietSlog(), TreeConfig{ShutdownTimeout: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}

	data := newCountingService("sweeper", 0)
	messaging := newCountingService("tracker", 0)
	api := newCountingService("http", 0)
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitRunning(t, data)
	waitRunning(t, messaging)
	waitRunning(t, api)

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}
	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTree_RestartsFailedService(t *testing.T) {
	tree, err := NewSupervisorTree(quietSlog(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	flaky := newCountingService("rebuild-queue", 2)
	tree.AddDataService(flaky)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitRunning(t, flaky)
	if got := flaky.starts.Load(); got != 3 {
		t.Errorf("starts = %d, want 3", got)
	}

	cancel()
	<-errCh
}
