// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/sillage/internal/cache"
	"github.com/tomtom215/sillage/internal/models"
	"github.com/tomtom215/sillage/internal/recommend"
)

// Recommender is the engine surface the handlers use.
type Recommender interface {
	Recommend(ctx context.Context, q recommend.Query) (*recommend.Result, error)
	TrackView(productID int64, userID, clientKey string)
	RebuildSimilarities(ctx context.Context, productID int64) ([]models.SimilarityRecord, error)
	InvalidateRecommendation(q recommend.Query) bool
}

// SimilarityReader reads stored similarity records.
type SimilarityReader interface {
	GetSimilarities(ctx context.Context, productID int64) ([]models.SimilarityRecord, error)
}

// RebuildQueue schedules background rebuilds of every active product.
type RebuildQueue interface {
	EnqueueAll(ctx context.Context) (int, error)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// CacheInspector exposes recommendation cache statistics.
type CacheInspector interface {
	Name() string
	TTL() time.Duration
	Len() int
	Stats() cache.Stats
	HitRate() float64
}

// Default request parameters.
const (
	DefaultLimit      = 10
	DefaultCookieName = "sillage_session"
	DefaultCookieTTL  = 30 * 24 * time.Hour
	readyTimeout      = 2 * time.Second
)

// Dependencies are the collaborators of Handler. Engine and Similarities
// are required; the rest disable their endpoints when nil.
type Dependencies struct {
	Engine       Recommender
	Similarities SimilarityReader
	Rebuilds     RebuildQueue
	Database     HealthChecker
	Cache        CacheInspector

	// CookieName names the session cookie. Empty uses DefaultCookieName.
	CookieName string

	// CookieTTL is the cookie lifetime. Zero uses DefaultCookieTTL.
	CookieTTL time.Duration
}

// Handler holds the HTTP handlers.
//
// Handler methods are split across files:
//   - handlers_recommend.go: recommendations and cache endpoints
//   - handlers_products.go: views and similarities
//   - handlers_health.go: probes
type Handler struct {
	engine       Recommender
	similarities SimilarityReader
	rebuilds     RebuildQueue
	db           HealthChecker
	cache        CacheInspector
	cookieName   string
	cookieTTL    time.Duration
	startTime    time.Time
}

// NewHandler creates a Handler.
//
//nolint:gocritic // hugeParam: deps is read once at construction
func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Engine == nil || deps.Similarities == nil {
		return nil, errors.New("engine and similarity reader are required")
	}
	h := &Handler{
		engine:       deps.Engine,
		similarities: deps.Similarities,
		rebuilds:     deps.Rebuilds,
		db:           deps.Database,
		cache:        deps.Cache,
		cookieName:   deps.CookieName,
		cookieTTL:    deps.CookieTTL,
		startTime:    time.Now(),
	}
	if h.cookieName == "" {
		h.cookieName = DefaultCookieName
	}
	if h.cookieTTL <= 0 {
		h.cookieTTL = DefaultCookieTTL
	}
	return h, nil
}
