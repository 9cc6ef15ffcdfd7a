// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Similarity SimilarityConfig `koanf:"similarity"`
	Sessions   SessionsConfig   `koanf:"sessions"`
	Events     EventsConfig     `koanf:"events"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Tracker    TrackerConfig    `koanf:"tracker"`
	Rebuild    RebuildConfig    `koanf:"rebuild"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"`        // Number of DuckDB threads (0 = use NumCPU)
	SeedDemoData bool   `koanf:"seed_demo_data"` // Load the demo catalog on startup
}

// Similarity store backends.
const (
	BackendDuckDB = "duckdb"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// SimilarityConfig selects where similarity records are persisted.
type SimilarityConfig struct {
	Backend    string `koanf:"backend"` // "duckdb" or "badger"
	BadgerPath string `koanf:"badger_path"`
}

// SessionsConfig controls how browsing sessions are resolved for view events.
type SessionsConfig struct {
	Backend    string        `koanf:"backend"` // "memory" or "badger"
	BadgerPath string        `koanf:"badger_path"`
	TTL        time.Duration `koanf:"ttl"` // Sliding lifetime of a badger session
	CookieName string        `koanf:"cookie_name"`
}

// Event transports for view events.
const (
	EventsDirect = "direct"
	EventsMemory = "memory"
	EventsNATS   = "nats"
)

// EventsConfig selects how view events travel from the tracker to storage.
//
//   - direct: tracker workers write to the view store
//   - memory: Watermill GoChannel pub/sub in process
//   - nats: Watermill NATS publisher and subscriber, optionally with an
//     embedded NATS server
type EventsConfig struct {
	Backend        string        `koanf:"backend"`
	NATSURL        string        `koanf:"nats_url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	EmbeddedPort   int           `koanf:"embedded_port"`
	StoreDir       string        `koanf:"store_dir"`
	Topic          string        `koanf:"topic"`
	QueueGroup     string        `koanf:"queue_group"`
	Subscribers    int           `koanf:"subscribers"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
}

// RecommendConfig holds pipeline settings. The result cache TTL is fixed
// and intentionally absent.
type RecommendConfig struct {
	StageTimeout        time.Duration `koanf:"stage_timeout"`
	RecentViews         int           `koanf:"recent_views"`
	SweepInterval       time.Duration `koanf:"sweep_interval"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerOpenTimeout  time.Duration `koanf:"breaker_open_timeout"`
}

// TrackerConfig sizes the view tracking worker pool.
type TrackerConfig struct {
	Workers      int           `koanf:"workers"`
	QueueSize    int           `koanf:"queue_size"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// RebuildConfig throttles bulk similarity rebuilds.
type RebuildConfig struct {
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`
	QueueSize     int     `koanf:"queue_size"`
}

// SecurityConfig holds HTTP hardening settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration using the layered Koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
