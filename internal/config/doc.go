// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

/*
Package config provides centralized configuration management for Sillage.

Configuration is layered with Koanf v2:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/sillage/config.yaml
 3. Environment variables, mapped explicitly (HTTP_PORT, DUCKDB_PATH, ...)

Comma-separated environment values for slice fields such as CORS_ORIGINS are
split before unmarshaling.

# Sections

  - Server: HTTP listener and timeouts
  - Database: DuckDB path and tuning
  - Similarity: similarity record backend (duckdb or badger)
  - Sessions: session resolution for view tracking (memory or badger)
  - Events: view event transport (direct, memory, nats)
  - Recommend: stage timeout, recent view count, breaker tuning
  - Tracker: view worker pool sizing
  - Rebuild: bulk rebuild throttling
  - Security: rate limiting and CORS
  - Logging: zerolog level and format

The recommendation cache TTL is fixed at 15 minutes and is not configurable.

Load validates the result and returns an error naming the offending
environment variable.
*/
package config
