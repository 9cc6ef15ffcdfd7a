// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

// Package logging provides centralized zerolog-based structured logging for Sillage.
//
// A global logger is configured once from main with Init and read through the
// level helpers (Info, Warn, Err, ...). Components that need their own fields
// take a zerolog.Logger, usually from WithComponent, and tests pass
// zerolog.Nop().
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Int("port", 8420).Msg("Server starting")
//	log := logging.WithComponent("recommend")
//
// # Context
//
// The HTTP middleware stores a request id in the context. Ctx(ctx) returns a
// logger carrying request_id and correlation_id when present:
//
//	logging.Ctx(ctx).Warn().Int64("product_id", id).Msg("stage failed")
//
// # Adapters
//
//   - SlogHandler: log/slog on zerolog, consumed by sutureslog
//   - WatermillAdapter: watermill.LoggerAdapter on zerolog, consumed by the
//     view event router, publishers and subscribers
//   - EventLogger: fixed messages for view event publish and consume paths
//
// # Privacy
//
// Session ids and client keys are opaque bearer values. Log them through
// SanitizeSessionID and SanitizeClientKey, never raw.
//
// # Output
//
// JSON (production):
//
//	{"level":"info","time":"2026-01-03T10:30:00Z","message":"Server starting","port":8420}
//
// Console (development):
//
//	10:30:00 INF Server starting port=8420
package logging
