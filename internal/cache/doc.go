// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

/*
Package cache provides a process-local, generic TTL cache.

The recommendation pipeline memoizes result lists here so a shopper who
revisits a page within the same browsing session gets the identical list
without the candidate sources being queried again.

# Overview

  - Generic over the cached value type (Cache[T])
  - Fixed TTL measured from write time (DefaultTTL is 15 minutes)
  - Lazy expiry on Get plus an explicit SweepExpired for periodic cleanup
  - Injected Clock so expiry is testable without sleeping
  - Values are stored as JSON; an entry that fails to decode is purged and
    reported as a miss

# Concurrency

Entries live in a sync.Map keyed by string. Each entry is an immutable
pointer, and removals during expiry use CompareAndDelete against the
pointer that was observed as expired. A Set that lands while a sweep is
running therefore survives the sweep.

# Usage Example

	clock := cache.SystemClock{}
	recs := cache.New[[]models.Product]("recommendations", cache.DefaultTTL, clock)

	key := cache.GenerateKey("recommend", params)
	if products, ok := recs.Get(key); ok {
	    return products, nil
	}
	products := compute()
	if err := recs.Set(key, products); err != nil {
	    logging.Warn().Err(err).Msg("cache store failed")
	}

# Metrics

Every cache reports cache_hits_total, cache_misses_total and
cache_evictions_total labelled with its name. SweepExpired also updates the
cache_entries gauge.
*/
package cache
