// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sillage/internal/middleware"
)

// Router binds handlers and middleware to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	metrics       http.Handler
}

// NewRouter creates a Router. A nil middleware factory uses defaults.
func NewRouter(handler *Handler, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
		metrics:       promhttp.Handler(),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, codeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(middleware.SecurityHeaders)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.PrometheusMetrics)

		r.Get("/recommendations", router.handler.Recommendations)
		r.Delete("/recommendations/cache", router.handler.InvalidateRecommendation)
		r.Get("/cache/stats", router.handler.CacheStats)

		r.Route("/products/{id}", func(r chi.Router) {
			r.Post("/views", router.handler.TrackView)
			r.Get("/similarities", router.handler.Similarities)
			r.Post("/similarities/rebuild", router.handler.RebuildSimilarities)
		})

		r.Post("/similarities/rebuild", router.handler.RebuildAll)
	})

	r.Method(http.MethodGet, "/metrics", router.metrics)

	return r
}
