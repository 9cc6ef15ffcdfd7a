// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

/*
Package tracking records product views without blocking the request path.

Tracker accepts views through Record, which only enqueues onto a bounded
channel. A fixed pool of workers, run under the supervisor through Serve,
resolves the browsing session, stamps the event and hands it to a ViewSink.
When the queue is full the view is dropped, counted and logged; the caller
is never slowed down and never sees an error.

Sessions map an opaque client key (a cookie value) to a generated session
id. An empty key always resolves to one process-wide session id.
MemorySessions keeps the mapping for the life of the process;
BadgerSessions persists it with a sliding TTL.

Sinks:
  - StoreSink writes straight to a view store (events backend "direct")
  - events.PublisherSink publishes to Watermill (backends "memory", "nats")
*/
package tracking
