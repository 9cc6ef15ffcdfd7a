// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sillage/internal/metrics"
	"github.com/tomtom215/sillage/internal/models"
)

// Key prefixes for BadgerDB storage
const similarityKeyPrefix = "sim:"

// ErrInvalidRecord is returned for records that do not belong to the
// product being replaced or carry an out-of-range score.
var ErrInvalidRecord = errors.New("invalid similarity record")

// BadgerSimilarityStore implements recommend.SimilarityStore on BadgerDB.
type BadgerSimilarityStore struct {
	db *badger.DB
}

// NewBadgerSimilarityStore wraps an open BadgerDB. The caller owns db.
func NewBadgerSimilarityStore(db *badger.DB) *BadgerSimilarityStore {
	return &BadgerSimilarityStore{db: db}
}

func similarityKey(productID int64) []byte {
	// Zero padding keeps keys ordered numerically for prefix scans.
	return []byte(fmt.Sprintf("%s%020d", similarityKeyPrefix, productID))
}

// ReplaceSimilarities stores records as the complete set for productID.
// An empty set deletes the key.
func (s *BadgerSimilarityStore) ReplaceSimilarities(ctx context.Context, productID int64, records []models.SimilarityRecord) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace", "badger_similarities", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now().UTC()
	stored := make([]models.SimilarityRecord, 0, len(records))
	for _, r := range records {
		switch {
		case r.SourceProductID != productID:
			return fmt.Errorf("%w: source %d does not match product %d", ErrInvalidRecord, r.SourceProductID, productID)
		case r.TargetProductID == productID:
			return fmt.Errorf("%w: product %d cannot be similar to itself", ErrInvalidRecord, productID)
		case r.Score < 0 || r.Score > 1:
			return fmt.Errorf("%w: score %v out of range", ErrInvalidRecord, r.Score)
		}
		if r.ComputedAt.IsZero() {
			r.ComputedAt = now
		}
		stored = append(stored, r)
	}
	sortRecords(stored)

	key := similarityKey(productID)
	if len(stored) == 0 {
		return s.db.Update(func(txn *badger.Txn) error {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete similarities of %d: %w", productID, err)
			}
			return nil
		})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal similarities: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set similarities of %d: %w", productID, err)
		}
		return nil
	})
}

// GetSimilarities returns the records of productID, best score first.
func (s *BadgerSimilarityStore) GetSimilarities(ctx context.Context, productID int64) (_ []models.SimilarityRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "badger_similarities", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]models.SimilarityRecord, 0)
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(similarityKey(productID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get similarities of %d: %w", productID, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &records)
		})
	})
	if err != nil {
		return nil, err
	}
	sortRecords(records)
	return records, nil
}

// Count returns the number of products with stored similarities.
func (s *BadgerSimilarityStore) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(similarityKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func sortRecords(records []models.SimilarityRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].TargetProductID < records[j].TargetProductID
	})
}
