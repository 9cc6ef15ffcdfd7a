// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/sillage/internal/config"
	"github.com/tomtom215/sillage/internal/database"
	"github.com/tomtom215/sillage/internal/kvstore"
	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/recommend"
	"github.com/tomtom215/sillage/internal/tracking"
)

// storeComponents holds every persistent store for lifecycle management.
type storeComponents struct {
	db           *database.DB
	similarities recommend.SimilarityStore
	sessions     tracking.SessionResolver

	badger    *badgerHandles
	closeOnce sync.Once
}

// openStores opens DuckDB and whichever badger databases the config
// selects. On error everything opened so far is closed.
func openStores(ctx context.Context, cfg *config.Config) (*storeComponents, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	stores := &storeComponents{db: db, badger: newBadgerHandles(kvstore.Open)}

	if cfg.Database.SeedDemoData {
		logging.Info().Msg("Demo data seeding enabled (SEED_DEMO_DATA=true)")
		if err := db.SeedDemoData(ctx); err != nil {
			stores.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}
	if counts, err := db.GetRecordCounts(ctx); err == nil {
		logging.Info().
			Int64("products", counts.Products).
			Int64("orders", counts.Orders).
			Int64("similarities", counts.Similarities).
			Int64("views", counts.Views).
			Msg("Database initialized successfully")
	}

	switch cfg.Similarity.Backend {
	case config.BackendBadger:
		bdb, err := stores.badger.open(cfg.Similarity.BadgerPath)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("%s: %w", describe("similarity", cfg.Similarity.Backend), err)
		}
		stores.similarities = kvstore.NewBadgerSimilarityStore(bdb)
	default:
		stores.similarities = db
	}

	switch cfg.Sessions.Backend {
	case config.BackendBadger:
		bdb, err := stores.badger.open(cfg.Sessions.BadgerPath)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("%s: %w", describe("session", cfg.Sessions.Backend), err)
		}
		stores.sessions = tracking.NewBadgerSessions(bdb, cfg.Sessions.TTL)
	default:
		stores.sessions = tracking.NewMemorySessions()
	}

	return stores, nil
}

// Close closes badger and then DuckDB. It is safe to call more than once.
func (s *storeComponents) Close() {
	s.closeOnce.Do(func() {
		s.badger.closeAll()
		if err := s.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	})
}

// badgerHandles opens each badger directory once. Similarities and
// sessions may share a directory; badger holds an exclusive lock on it.
type badgerHandles struct {
	openFn func(path string) (*badger.DB, error)
	byPath map[string]*badger.DB
	order  []string
}

func newBadgerHandles(openFn func(path string) (*badger.DB, error)) *badgerHandles {
	return &badgerHandles{openFn: openFn, byPath: make(map[string]*badger.DB)}
}

func (h *badgerHandles) open(path string) (*badger.DB, error) {
	key := filepath.Clean(path)
	if db, ok := h.byPath[key]; ok {
		return db, nil
	}
	db, err := h.openFn(key)
	if err != nil {
		return nil, err
	}
	h.byPath[key] = db
	h.order = append(h.order, key)
	logging.Info().Str("path", key).Msg("BadgerDB opened")
	return db, nil
}

func (h *badgerHandles) closeAll() {
	for i := len(h.order) - 1; i >= 0; i-- {
		path := h.order[i]
		if err := h.byPath[path].Close(); err != nil {
			logging.Error().Err(err).Str("path", path).Msg("Error closing BadgerDB")
		}
		delete(h.byPath, path)
	}
	h.order = nil
}
