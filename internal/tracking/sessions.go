// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// SessionResolver maps a client key to a stable session id.
type SessionResolver interface {
	Resolve(ctx context.Context, clientKey string) (string, error)
}

// anonymousSession lazily generates the process-wide session id shared by
// every caller without a client key.
type anonymousSession struct {
	once sync.Once
	id   string
}

func (a *anonymousSession) get() string {
	a.once.Do(func() {
		a.id = uuid.New().String()
	})
	return a.id
}

// MemorySessions keeps session ids in process memory.
type MemorySessions struct {
	anon     anonymousSession
	sessions sync.Map // client key -> session id
}

// NewMemorySessions creates an empty in-memory resolver.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{}
}

// Resolve returns the session id of clientKey, creating one on first use.
func (m *MemorySessions) Resolve(_ context.Context, clientKey string) (string, error) {
	if clientKey == "" {
		return m.anon.get(), nil
	}
	if id, ok := m.sessions.Load(clientKey); ok {
		return id.(string), nil
	}
	id, _ := m.sessions.LoadOrStore(clientKey, uuid.New().String())
	return id.(string), nil
}

// Len returns the number of keyed sessions.
func (m *MemorySessions) Len() int {
	n := 0
	m.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Key prefixes for BadgerDB storage
const sessionKeyPrefix = "session:"

// BadgerSessions persists session ids in BadgerDB. Every resolve rewrites
// the entry so the TTL slides with activity.
type BadgerSessions struct {
	db   *badger.DB
	ttl  time.Duration
	anon anonymousSession
}

// NewBadgerSessions wraps an open BadgerDB. The caller owns db.
func NewBadgerSessions(db *badger.DB, ttl time.Duration) *BadgerSessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &BadgerSessions{db: db, ttl: ttl}
}

// Resolve returns the session id of clientKey, creating one on first use
// and extending its lifetime on every call.
func (b *BadgerSessions) Resolve(ctx context.Context, clientKey string) (string, error) {
	if clientKey == "" {
		return b.anon.get(), nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := []byte(sessionKeyPrefix + clientKey)
	var sessionID string

	err := b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			sessionID = uuid.New().String()
		case err != nil:
			return fmt.Errorf("get session: %w", err)
		default:
			if err := item.Value(func(val []byte) error {
				sessionID = string(val)
				return nil
			}); err != nil {
				return fmt.Errorf("read session: %w", err)
			}
		}
		return txn.SetEntry(badger.NewEntry(key, []byte(sessionID)).WithTTL(b.ttl))
	})
	if errors.Is(err, badger.ErrConflict) {
		// A concurrent first resolve of the same key won; read its id.
		return b.lookup(key)
	}
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (b *BadgerSessions) lookup(key []byte) (string, error) {
	var sessionID string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	return sessionID, err
}
