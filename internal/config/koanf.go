// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sillage/config.yaml",
	"/etc/sillage/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8420,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         "/data/sillage.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			SeedDemoData: false,
		},
		Similarity: SimilarityConfig{
			Backend:    BackendDuckDB,
			BadgerPath: "/data/similarities",
		},
		Sessions: SessionsConfig{
			Backend:    BackendMemory,
			BadgerPath: "/data/sessions",
			TTL:        30 * time.Minute,
			CookieName: "sillage_session",
		},
		Events: EventsConfig{
			Backend:        EventsDirect,
			NATSURL:        "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			EmbeddedPort:   4222,
			StoreDir:       "/data/nats",
			Topic:          "views.recorded",
			QueueGroup:     "view-writers",
			Subscribers:    2,
			CloseTimeout:   10 * time.Second,
		},
		Recommend: RecommendConfig{
			StageTimeout:        2 * time.Second,
			RecentViews:         5,
			SweepInterval:       time.Minute,
			BreakerFailureRatio: 0.6,
			BreakerMinRequests:  10,
			BreakerOpenTimeout:  30 * time.Second,
		},
		Tracker: TrackerConfig{
			Workers:      4,
			QueueSize:    1024,
			WriteTimeout: 5 * time.Second,
		},
		Rebuild: RebuildConfig{
			RatePerSecond: 20,
			Burst:         5,
			QueueSize:     10000,
		},
		Security: SecurityConfig{
			RateLimitReqs:     300,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_demo_data":    "database.seed_demo_data",

	// Similarity store
	"similarity_backend":     "similarity.backend",
	"similarity_badger_path": "similarity.badger_path",

	// Sessions
	"session_backend":     "sessions.backend",
	"session_badger_path": "sessions.badger_path",
	"session_ttl":         "sessions.ttl",
	"session_cookie_name": "sessions.cookie_name",

	// Events
	"events_backend":       "events.backend",
	"nats_url":             "events.nats_url",
	"nats_embedded":        "events.embedded_server",
	"nats_embedded_port":   "events.embedded_port",
	"nats_store_dir":       "events.store_dir",
	"events_topic":         "events.topic",
	"events_queue_group":   "events.queue_group",
	"events_subscribers":   "events.subscribers",
	"events_close_timeout": "events.close_timeout",

	// Recommendation pipeline
	"recommend_stage_timeout":         "recommend.stage_timeout",
	"recommend_recent_views":          "recommend.recent_views",
	"recommend_sweep_interval":        "recommend.sweep_interval",
	"recommend_breaker_failure_ratio": "recommend.breaker_failure_ratio",
	"recommend_breaker_min_requests":  "recommend.breaker_min_requests",
	"recommend_breaker_open_timeout":  "recommend.breaker_open_timeout",

	// View tracker
	"tracker_workers":       "tracker.workers",
	"tracker_queue_size":    "tracker.queue_size",
	"tracker_write_timeout": "tracker.write_timeout",

	// Bulk rebuilds
	"rebuild_rate_per_second": "rebuild.rate_per_second",
	"rebuild_burst":           "rebuild.burst",
	"rebuild_queue_size":      "rebuild.queue_size",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - EVENTS_BACKEND -> events.backend
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Returning empty skips the variable so unrelated env vars never leak in.
	return ""
}
