// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package kvstore

import (
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sillage/internal/logging"
)

// Open opens (creating if needed) a BadgerDB at path. Badger's own log
// output is routed through zerolog at warn level and above.
func Open(path string) (*badger.DB, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create badger directory %s: %w", path, err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = &badgerLogger{logger: logging.WithComponent("badger").With().Str("path", path).Logger()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", path, err)
	}
	return db, nil
}

// OpenInMemory opens a non-persistent BadgerDB, used by tests and demos.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger db: %w", err)
	}
	return db, nil
}

// badgerLogger implements badger.Logger on zerolog. Info and debug
// chatter (compaction, value log GC) is dropped.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(string, ...any) {}

func (l *badgerLogger) Debugf(string, ...any) {}
