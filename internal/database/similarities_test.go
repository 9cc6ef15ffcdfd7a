// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/sillage/internal/models"
)

func sim(source, target int64, score float64) models.SimilarityRecord {
	return models.SimilarityRecord{SourceProductID: source, TargetProductID: target, Score: score}
}

func targets(records []models.SimilarityRecord) []int64 {
	ids := make([]int64, len(records))
	for i := range records {
		ids[i] = records[i].TargetProductID
	}
	return ids
}

func TestReplaceAndGetSimilarities(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceSimilarities(ctx, 1, []models.SimilarityRecord{
		sim(1, 3, 0.5),
		sim(1, 2, 0.9),
		sim(1, 4, 0.5),
	}); err != nil {
		t.Fatalf("ReplaceSimilarities() error = %v", err)
	}
	if err := db.ReplaceSimilarities(ctx, 2, []models.SimilarityRecord{sim(2, 1, 0.9)}); err != nil {
		t.Fatalf("ReplaceSimilarities() error = %v", err)
	}

	got, err := db.GetSimilarities(ctx, 1)
	if err != nil {
		t.Fatalf("GetSimilarities() error = %v", err)
	}
	if ids := targets(got); !equalIDs(ids, []int64{2, 3, 4}) {
		t.Errorf("GetSimilarities(1) targets = %v, want [2 3 4]", ids)
	}
	for _, r := range got {
		if r.ComputedAt.IsZero() {
			t.Errorf("record %d->%d has zero ComputedAt", r.SourceProductID, r.TargetProductID)
		}
	}

	// Replacing swaps the whole set.
	if err := db.ReplaceSimilarities(ctx, 1, []models.SimilarityRecord{sim(1, 4, 0.7)}); err != nil {
		t.Fatalf("ReplaceSimilarities() error = %v", err)
	}
	got, _ = db.GetSimilarities(ctx, 1)
	if ids := targets(got); !equalIDs(ids, []int64{4}) {
		t.Errorf("after replace targets = %v, want [4]", ids)
	}

	// Other products are untouched.
	got, _ = db.GetSimilarities(ctx, 2)
	if ids := targets(got); !equalIDs(ids, []int64{1}) {
		t.Errorf("product 2 targets = %v, want [1]", ids)
	}

	// Empty replace clears.
	if err := db.ReplaceSimilarities(ctx, 1, nil); err != nil {
		t.Fatalf("ReplaceSimilarities(nil) error = %v", err)
	}
	got, _ = db.GetSimilarities(ctx, 1)
	if len(got) != 0 {
		t.Errorf("after clearing got %v, want empty", targets(got))
	}
}

func TestReplaceSimilarities_SameTargetsTwice(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	records := []models.SimilarityRecord{sim(1, 2, 0.8), sim(1, 3, 0.6)}

	for i := 0; i < 3; i++ {
		if err := db.ReplaceSimilarities(ctx, 1, records); err != nil {
			t.Fatalf("ReplaceSimilarities() run %d error = %v", i, err)
		}
	}
	got, _ := db.GetSimilarities(ctx, 1)
	if ids := targets(got); !equalIDs(ids, []int64{2, 3}) {
		t.Errorf("targets = %v, want [2 3]", ids)
	}
}

func TestReplaceSimilarities_Invalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	if err := db.ReplaceSimilarities(ctx, 1, []models.SimilarityRecord{sim(1, 2, 0.5)}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		records []models.SimilarityRecord
	}{
		{"foreign source", []models.SimilarityRecord{sim(9, 2, 0.5)}},
		{"self edge", []models.SimilarityRecord{sim(1, 1, 1.0)}},
		{"score above one", []models.SimilarityRecord{sim(1, 3, 1.2)}},
		{"negative score", []models.SimilarityRecord{sim(1, 3, -0.1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.ReplaceSimilarities(ctx, 1, tt.records); !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("ReplaceSimilarities() error = %v, want ErrInvalidRecord", err)
			}
			got, _ := db.GetSimilarities(ctx, 1)
			if ids := targets(got); !equalIDs(ids, []int64{2}) {
				t.Errorf("rejected replace changed records: %v", ids)
			}
		})
	}
}
