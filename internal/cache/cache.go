// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package cache

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sillage/internal/logging"
	"github.com/tomtom215/sillage/internal/metrics"
)

// DefaultTTL is the lifetime of a recommendation entry measured from write time.
const DefaultTTL = 15 * time.Minute

// ErrCorruptEntry is reported when a stored payload cannot be decoded.
var ErrCorruptEntry = errors.New("cache: corrupt entry")

// entry is a serialized value and the time it was written.
// Entries are immutable once stored; a refresh replaces the pointer.
type entry struct {
	payload   []byte
	writtenAt time.Time
}

// Stats tracks cache performance counters
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a process-local TTL cache for values of type T.
//
// Values are stored as JSON so a hit always returns an independent copy
// and an entry that no longer decodes into T is detectable. Operations on
// distinct keys never contend; concurrent writes to one key are
// last-write-wins.
//
// Example:
//
//	c := cache.New[[]models.Product]("recommendations", cache.DefaultTTL, cache.SystemClock{})
//	if err := c.Set(key, products); err != nil {
//	    return err
//	}
//	if products, ok := c.Get(key); ok {
//	    // use products
//	}
type Cache[T any] struct {
	name    string
	ttl     time.Duration
	clock   Clock
	entries sync.Map // string -> *entry

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	lastCleanup atomic.Int64 // unix nanos
}

// New creates a cache named for metric labels. A nil clock uses the system clock.
func New[T any](name string, ttl time.Duration, clock Clock) *Cache[T] {
	if clock == nil {
		clock = SystemClock{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache[T]{
		name:  name,
		ttl:   ttl,
		clock: clock,
	}
	c.lastCleanup.Store(clock.Now().UnixNano())
	return c
}

// Name returns the cache name used in metric labels.
func (c *Cache[T]) Name() string { return c.name }

// TTL returns the configured entry lifetime.
func (c *Cache[T]) TTL() time.Duration { return c.ttl }

// Get returns the cached value for key.
//
// An entry older than the TTL is removed and reported as a miss. An entry
// whose payload cannot be decoded is purged and also reported as a miss.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T

	v, ok := c.entries.Load(key)
	if !ok {
		c.recordMiss()
		return zero, false
	}
	e := v.(*entry)

	if c.expired(e, c.clock.Now()) {
		if c.entries.CompareAndDelete(key, e) {
			c.recordEviction("expired")
		}
		c.recordMiss()
		return zero, false
	}

	value, err := decode[T](e.payload)
	if err != nil {
		if c.entries.CompareAndDelete(key, e) {
			c.recordEviction("corrupt")
		}
		logging.Warn().
			Err(err).
			Str("cache", c.name).
			Msg("purged undecodable cache entry")
		c.recordMiss()
		return zero, false
	}

	c.recordHit()
	return value, true
}

// decode unmarshals a stored payload. Failures wrap ErrCorruptEntry.
func decode[T any](payload []byte) (T, error) {
	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		return value, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	return value, nil
}

// Set stores value under key, replacing any existing entry.
func (c *Cache[T]) Set(key string, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	c.entries.Store(key, &entry{payload: payload, writtenAt: c.clock.Now()})
	return nil
}

// setRaw stores an already serialized payload. Tests use it to plant corrupt entries.
func (c *Cache[T]) setRaw(key string, payload []byte) {
	c.entries.Store(key, &entry{payload: payload, writtenAt: c.clock.Now()})
}

// Invalidate removes key. It reports whether an entry was present.
func (c *Cache[T]) Invalidate(key string) bool {
	if _, loaded := c.entries.LoadAndDelete(key); loaded {
		c.recordEviction("invalidated")
		return true
	}
	return false
}

// Clear removes every entry and returns how many were dropped.
func (c *Cache[T]) Clear() int {
	removed := 0
	c.entries.Range(func(k, v any) bool {
		if c.entries.CompareAndDelete(k, v) {
			removed++
		}
		return true
	})
	if removed > 0 {
		c.evictions.Add(int64(removed))
		metrics.CacheEvictions.WithLabelValues(c.name, "cleared").Add(float64(removed))
	}
	return removed
}

// SweepExpired removes entries older than the TTL and returns the count removed.
//
// Each removal is conditional on the entry pointer observed during the scan,
// so a value written for the same key while the sweep runs is kept.
func (c *Cache[T]) SweepExpired() int {
	now := c.clock.Now()
	removed := 0
	c.entries.Range(func(k, v any) bool {
		if c.expired(v.(*entry), now) && c.entries.CompareAndDelete(k, v) {
			removed++
		}
		return true
	})
	if removed > 0 {
		c.evictions.Add(int64(removed))
		metrics.CacheEvictions.WithLabelValues(c.name, "expired").Add(float64(removed))
	}
	c.lastCleanup.Store(now.UnixNano())
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(c.Len()))
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[T]) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[T]) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		TotalKeys:   int64(c.Len()),
		LastCleanup: time.Unix(0, c.lastCleanup.Load()),
	}
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache[T]) HitRate() float64 {
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total) * 100.0
}

func (c *Cache[T]) expired(e *entry, now time.Time) bool {
	return now.Sub(e.writtenAt) > c.ttl
}

func (c *Cache[T]) recordHit() {
	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues(c.name).Inc()
}

func (c *Cache[T]) recordMiss() {
	c.misses.Add(1)
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
}

func (c *Cache[T]) recordEviction(reason string) {
	c.evictions.Add(1)
	metrics.CacheEvictions.WithLabelValues(c.name, reason).Inc()
}

// GenerateKey creates a cache key from the method name and parameters
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}

	// Hash the JSON data for a compact key
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
