// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

/*
Package database provides DuckDB-backed persistence for the catalog, order
history, similarity records and view events.

DB implements the recommend package's Catalog, OrderReader, SimilarityStore
and ViewStore interfaces, so one handle serves the whole engine.

# Schema

  - products: catalog entries; notes are stored as a JSON array
  - orders, order_items: purchase history used for co-purchase counts
  - product_similarities: directed scored edges, replaced per source product
  - product_views: view events, ordered by time and an insertion sequence

# Behavior

Every call without a deadline gets a 30 second timeout. Queries report
latency and errors through the metrics package. ReplaceSimilarities and
AppendViewEvent run inside transactions; view writes retry on DuckDB
transaction conflicts because concurrent views of one product update the
same counter row.

Unknown products are reported by wrapping recommend.ErrProductNotFound.
*/
package database
