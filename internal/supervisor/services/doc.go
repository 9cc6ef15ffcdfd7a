// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

/*
Package services adapts Sillage components to suture's Serve(ctx) error
lifecycle.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel
  - CacheSweeperService: periodic SweepExpired on the recommendation cache
  - RebuildService: bounded, rate-limited queue of similarity rebuilds

Every service returns ctx.Err() when canceled and implements fmt.Stringer so
supervisor log lines name it.
*/
package services
