// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"empty db path", func(c *Config) { c.Database.Path = " " }, "DUCKDB_PATH"},
		{"negative threads", func(c *Config) { c.Database.Threads = -1 }, "DUCKDB_THREADS"},
		{"unknown similarity backend", func(c *Config) { c.Similarity.Backend = "redis" }, "SIMILARITY_BACKEND"},
		{"badger similarity without path", func(c *Config) {
			c.Similarity.Backend = BackendBadger
			c.Similarity.BadgerPath = ""
		}, "SIMILARITY_BADGER_PATH"},
		{"badger sessions without ttl", func(c *Config) {
			c.Sessions.Backend = BackendBadger
			c.Sessions.TTL = 0
		}, "SESSION_TTL"},
		{"unknown session backend", func(c *Config) { c.Sessions.Backend = "cookie" }, "SESSION_BACKEND"},
		{"unknown events backend", func(c *Config) { c.Events.Backend = "kafka" }, "EVENTS_BACKEND"},
		{"memory events without topic", func(c *Config) {
			c.Events.Backend = EventsMemory
			c.Events.Topic = ""
		}, "EVENTS_TOPIC"},
		{"external nats with bad url", func(c *Config) {
			c.Events.Backend = EventsNATS
			c.Events.EmbeddedServer = false
			c.Events.NATSURL = "http://nats"
		}, "NATS_URL"},
		{"direct events ignore topic", func(c *Config) { c.Events.Topic = "" }, ""},
		{"zero stage timeout", func(c *Config) { c.Recommend.StageTimeout = 0 }, "RECOMMEND_STAGE_TIMEOUT"},
		{"negative recent views", func(c *Config) { c.Recommend.RecentViews = -1 }, "RECOMMEND_RECENT_VIEWS"},
		{"zero recent views ok", func(c *Config) { c.Recommend.RecentViews = 0 }, ""},
		{"breaker ratio above one", func(c *Config) { c.Recommend.BreakerFailureRatio = 1.5 }, "BREAKER_FAILURE_RATIO"},
		{"no tracker workers", func(c *Config) { c.Tracker.Workers = 0 }, "TRACKER_WORKERS"},
		{"zero rebuild rate", func(c *Config) { c.Rebuild.RatePerSecond = 0 }, "REBUILD_RATE_PER_SECOND"},
		{"rate limit window too long", func(c *Config) { c.Security.RateLimitWindow = 2 * time.Hour }, "RATE_LIMIT_WINDOW"},
		{"rate limit disabled skips bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
