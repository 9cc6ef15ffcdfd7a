// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

// Package recommend implements product similarity scoring and the
// multi-source recommendation pipeline.
//
// # Architecture
//
// The package is built from small parts, leaves first:
//
//   - Score: pure pairwise similarity in [0, 1] from category, brand,
//     shared notes and price proximity
//   - Builder: scores one product against the active catalog and replaces
//     its stored top-K similarity records
//   - CoPurchaseAggregator: counts products that share orders with a product
//   - Pipeline: runs candidate stages in priority order and memoizes the
//     result in a cache.Cache
//   - Engine: the facade used by the HTTP API and supervisor services
//
// # Pipeline
//
// Stages run sequentially and stop as soon as the limit is met:
//
//  1. similar: the anchor product's stored similarities
//  2. co_purchase: products bought together with the anchor product
//  3. recent_views: similarities of the shopper's latest views
//  4. popular: most viewed active, in-stock products
//
// A seen-id set spans all stages and starts with the anchor product, so a
// product never recommends itself and earlier stages always win. Each stage
// runs under its own timeout and circuit breaker; a failing stage contributes
// nothing and the pipeline moves on.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), recommend.Dependencies{
//	    Catalog:      db,
//	    Orders:       db,
//	    Similarities: db,
//	    Views:        db,
//	    Tracker:      tracker,
//	}, logger)
//
//	res, err := engine.Recommend(ctx, recommend.Query{Limit: 4, ProductID: 42})
//
// # Thread Safety
//
// Engine, Pipeline and Builder are safe for concurrent use. Concurrent
// misses on the same cache key are coalesced with singleflight.
package recommend
