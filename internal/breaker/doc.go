// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

// Package breaker wraps sony/gobreaker with Prometheus metrics and
// structured logging. Each recommendation stage and the NATS view publisher
// get their own named breaker, so one failing dependency stops being called
// without affecting the others.
package breaker
