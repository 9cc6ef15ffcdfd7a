// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper is a cache that can drop expired entries.
type Sweeper interface {
	Name() string
	SweepExpired() int
	Len() int
}

// CacheSweeperService bounds the memory of a TTL cache by periodically
// removing entries that reads would already treat as misses.
type CacheSweeperService struct {
	cache    Sweeper
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheSweeperService creates a sweeper. A non-positive interval
// becomes one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheSweeperService(cache Sweeper, interval time.Duration, logger zerolog.Logger) *CacheSweeperService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheSweeperService{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("service", "cache-sweeper").Str("cache", cache.Name()).Logger(),
	}
}

// Serve implements suture.Service.
func (s *CacheSweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("cache sweeper started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *CacheSweeperService) sweep() {
	removed := s.cache.SweepExpired()
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Int("remaining", s.cache.Len()).Msg("expired cache entries swept")
	}
}

// String implements fmt.Stringer.
func (s *CacheSweeperService) String() string {
	return "cache-sweeper"
}
