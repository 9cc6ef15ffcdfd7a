// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

/*
Package api serves the recommendation engine over HTTP using the chi router.

# Endpoints

	GET    /api/v1/recommendations?limit=&product_id=&user_id=
	DELETE /api/v1/recommendations/cache?limit=&product_id=&user_id=
	GET    /api/v1/cache/stats
	POST   /api/v1/products/{id}/views
	GET    /api/v1/products/{id}/similarities
	POST   /api/v1/products/{id}/similarities/rebuild
	POST   /api/v1/similarities/rebuild
	GET    /api/v1/health/live
	GET    /api/v1/health/ready
	GET    /metrics

Every JSON response uses the models.APIResponse envelope. Errors carry a
machine-readable code (see errors.go) and never leak internal messages.

# Middleware

Global: request id, real IP, panic recovery, CORS. The /api/v1 group adds
per-IP rate limiting (go-chi/httprate), security headers and Prometheus
request metrics. Health probes use a separate, more permissive limiter.

# Sessions

View tracking identifies browsers by an opaque cookie. When the request has
none, the handler issues a new one and uses its value as the client key;
the tracker maps client keys to session ids.

# Usage

	handler := api.NewHandler(api.Dependencies{Engine: engine, ...})
	router := api.NewRouter(handler, api.NewChiMiddlewareFromSecurity(&cfg.Security))
	srv := &http.Server{Addr: addr, Handler: router.SetupChi()}
*/
package api
