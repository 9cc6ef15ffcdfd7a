// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

// Package kvstore provides BadgerDB-backed storage: a similarity store that
// can replace the DuckDB table, and the shared Open helper used by other
// badger consumers such as the session store.
//
// Similarity records of one product live under a single key
// ("sim:<zero-padded id>") as a JSON array, so a replace is one atomic
// write and readers never observe a half-replaced set.
package kvstore
