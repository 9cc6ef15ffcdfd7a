// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

// Package events moves view events from the tracker to the view store over
// a Watermill message bus.
//
// With events.backend set to "memory" or "nats" the tracker writes to a
// PublisherSink instead of the database. A Router consumes the topic and
// hands each message to a ViewWriter, which appends it to the store:
//
//	Tracker -> PublisherSink -> topic -> Router -> ViewWriter -> DuckDB
//
// # Transports
//
//   - memory: Watermill gochannel, in-process and non-persistent
//   - nats: watermill-nats on JetStream. The stream is created up front by
//     EnsureStream; an EmbeddedServer can host NATS inside the process.
//
// # Delivery
//
// Messages carry the view event id as their UUID and as Nats-Msg-Id, so
// JetStream drops duplicate publishes inside its window and the store
// ignores redelivered ids. Payloads that cannot be decoded are logged and
// acknowledged; store errors are retried with exponential backoff by the
// router's Retry middleware and then nacked.
package events
