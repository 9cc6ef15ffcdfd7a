// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateSimilarity,
		c.validateSessions,
		c.validateEvents,
		c.validateRecommend,
		c.validateTracker,
		c.validateRebuild,
		c.validateRateLimits,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be 0 (auto) or positive")
	}
	return nil
}

func (c *Config) validateSimilarity() error {
	switch c.Similarity.Backend {
	case BackendDuckDB:
		return nil
	case BackendBadger:
		if c.Similarity.BadgerPath == "" {
			return fmt.Errorf("SIMILARITY_BADGER_PATH is required when SIMILARITY_BACKEND=badger")
		}
		return nil
	default:
		return fmt.Errorf("SIMILARITY_BACKEND must be one of: duckdb, badger")
	}
}

func (c *Config) validateSessions() error {
	switch c.Sessions.Backend {
	case BackendMemory:
	case BackendBadger:
		if c.Sessions.BadgerPath == "" {
			return fmt.Errorf("SESSION_BADGER_PATH is required when SESSION_BACKEND=badger")
		}
		if c.Sessions.TTL <= 0 {
			return fmt.Errorf("SESSION_TTL must be positive when SESSION_BACKEND=badger")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be one of: memory, badger")
	}
	if c.Sessions.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME is required")
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Backend {
	case EventsDirect:
		return nil
	case EventsMemory, EventsNATS:
	default:
		return fmt.Errorf("EVENTS_BACKEND must be one of: direct, memory, nats")
	}

	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when EVENTS_BACKEND=%s", c.Events.Backend)
	}
	if c.Events.Subscribers < 1 {
		return fmt.Errorf("EVENTS_SUBSCRIBERS must be at least 1")
	}
	if c.Events.Backend != EventsNATS {
		return nil
	}
	if c.Events.EmbeddedServer {
		if c.Events.EmbeddedPort < 1 || c.Events.EmbeddedPort > 65535 {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535")
		}
		return nil
	}
	if !strings.HasPrefix(c.Events.NATSURL, "nats://") && !strings.HasPrefix(c.Events.NATSURL, "tls://") {
		return fmt.Errorf("NATS_URL must start with nats:// or tls://")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.StageTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_STAGE_TIMEOUT must be positive")
	}
	if r.RecentViews < 0 {
		return fmt.Errorf("RECOMMEND_RECENT_VIEWS must not be negative")
	}
	if r.SweepInterval <= 0 {
		return fmt.Errorf("RECOMMEND_SWEEP_INTERVAL must be positive")
	}
	if r.BreakerFailureRatio <= 0 || r.BreakerFailureRatio > 1 {
		return fmt.Errorf("RECOMMEND_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if r.BreakerOpenTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_BREAKER_OPEN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateTracker() error {
	if c.Tracker.Workers < 1 {
		return fmt.Errorf("TRACKER_WORKERS must be at least 1")
	}
	if c.Tracker.QueueSize < 1 {
		return fmt.Errorf("TRACKER_QUEUE_SIZE must be at least 1")
	}
	if c.Tracker.WriteTimeout <= 0 {
		return fmt.Errorf("TRACKER_WRITE_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateRebuild() error {
	if c.Rebuild.RatePerSecond <= 0 {
		return fmt.Errorf("REBUILD_RATE_PER_SECOND must be positive")
	}
	if c.Rebuild.Burst < 1 {
		return fmt.Errorf("REBUILD_BURST must be at least 1")
	}
	if c.Rebuild.QueueSize < 1 {
		return fmt.Errorf("REBUILD_QUEUE_SIZE must be at least 1")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
