// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

/*
Package middleware provides the HTTP middleware shared by every Sillage
route, in chi's func(http.Handler) http.Handler form.

  - RequestID: accepts or generates X-Request-ID and threads it, with a
    fresh correlation id, into the logging context
  - PrometheusMetrics: api_requests_total and api_request_duration_seconds
    labeled by the matched chi route pattern, never the raw path
  - SecurityHeaders: nosniff, frame denial, referrer policy and HSTS behind TLS

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.SecurityHeaders)
	    r.Use(middleware.PrometheusMetrics)
	    ...
	})
*/
package middleware
