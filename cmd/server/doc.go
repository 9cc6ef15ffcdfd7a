// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

/*
Package main is the entry point for the Sillage server.

Sillage serves product recommendations from a DuckDB catalog, caches them
in process, and records product views for the recent-view stage.

# Startup Order

 1. Configuration: koanf layered defaults, config file and environment
 2. Logging: zerolog, level and format from config
 3. Storage: DuckDB, plus badger for similarities and sessions when selected
 4. Events: direct writes, Watermill GoChannel, or Watermill over NATS
    JetStream with an optional embedded server
 5. Engine: recommendation pipeline, similarity builder, view tracker
 6. Supervisor tree: cache sweeper and rebuild queue (data layer), view
    tracker and event router (messaging layer), HTTP server (api layer)

# Configuration

Every setting has an environment variable; see internal/config. The most
common:

	HTTP_PORT=8420
	DUCKDB_PATH=/data/sillage.duckdb
	SEED_DEMO_DATA=true
	SIMILARITY_BACKEND=duckdb|badger
	SESSION_BACKEND=memory|badger
	EVENTS_BACKEND=direct|memory|nats
	LOG_LEVEL=info

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops every
service (the HTTP server drains in-flight requests), then the event
transport, badger and DuckDB are closed in reverse order of opening.

# Example

	SEED_DEMO_DATA=true LOG_FORMAT=console ./sillage
	curl 'localhost:8420/api/v1/recommendations?limit=4&product_id=1'
*/
package main
