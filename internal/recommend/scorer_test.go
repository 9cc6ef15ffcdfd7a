// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package recommend

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sillage/internal/models"
)

func TestScore(t *testing.T) {
	x := models.Product{ID: 1, CategoryID: "men", BrandID: "B1", Notes: []string{"oud", "rose"}, Price: 100}
	y := models.Product{ID: 2, CategoryID: "men", BrandID: "B1", Notes: []string{"oud", "rose"}, Price: 100}

	tests := []struct {
		name string
		a, b models.Product
		want float64
	}{
		{name: "identical descriptors", a: x, b: y, want: 1.0},
		{
			name: "nothing in common",
			a:    models.Product{CategoryID: "men", BrandID: "B1", Notes: []string{"oud"}, Price: 100},
			b:    models.Product{CategoryID: "women", BrandID: "B2", Notes: []string{"iris"}, Price: 300},
			want: 0.0,
		},
		{
			name: "price difference far above average",
			a:    models.Product{CategoryID: "men", BrandID: "B1", Price: 10},
			b:    models.Product{CategoryID: "women", BrandID: "B2", Price: 1000},
			want: 0.0,
		},
		{
			name: "category only, prices far apart",
			a:    models.Product{CategoryID: "men", BrandID: "B1", Price: 100},
			b:    models.Product{CategoryID: "men", BrandID: "B2", Price: 300},
			want: 0.3,
		},
		{
			name: "half the notes shared",
			a:    models.Product{CategoryID: "c1", BrandID: "b1", Notes: []string{"oud", "rose"}, Price: 100},
			b:    models.Product{CategoryID: "c2", BrandID: "b2", Notes: []string{"oud", "musk"}, Price: 300},
			want: 0.2,
		},
		{
			name: "notes compared against the larger set",
			a:    models.Product{CategoryID: "c1", BrandID: "b1", Notes: []string{"oud"}, Price: 100},
			b:    models.Product{CategoryID: "c2", BrandID: "b2", Notes: []string{"oud", "musk", "amber", "iris"}, Price: 300},
			want: 0.1,
		},
		{
			name: "one side without notes",
			a:    models.Product{CategoryID: "c1", BrandID: "b1", Notes: nil, Price: 100},
			b:    models.Product{CategoryID: "c2", BrandID: "b2", Notes: []string{"oud"}, Price: 300},
			want: 0.0,
		},
		{
			name: "both free",
			a:    models.Product{CategoryID: "c1", BrandID: "b1", Price: 0},
			b:    models.Product{CategoryID: "c2", BrandID: "b2", Price: 0},
			want: 0.2,
		},
		{
			name: "price 25 percent apart of average",
			a:    models.Product{CategoryID: "c1", BrandID: "b1", Price: 70},
			b:    models.Product{CategoryID: "c2", BrandID: "b2", Price: 90},
			want: 0.15,
		},
		{
			name: "brand and price",
			a:    models.Product{CategoryID: "c1", BrandID: "B1", Price: 100},
			b:    models.Product{CategoryID: "c2", BrandID: "B1", Price: 100},
			want: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.a, tt.b); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreSelfWithNotes(t *testing.T) {
	products := []models.Product{
		{CategoryID: "men", BrandID: "B1", Notes: []string{"oud"}, Price: 80},
		{CategoryID: "women", BrandID: "B9", Notes: []string{"iris", "musk", "amber"}, Price: 0},
		{CategoryID: "", BrandID: "", Notes: []string{"rose", "rose"}, Price: 12.5},
	}
	for _, p := range products {
		if got := Score(p, p); got != 1.0 {
			t.Errorf("Score(p, p) = %v for %+v, want 1.0", got, p)
		}
	}
}

func TestScoreBoundsAndSymmetry(t *testing.T) {
	categories := []string{"men", "women"}
	brands := []string{"B1", "B2"}
	notes := [][]string{nil, {"oud"}, {"oud", "rose"}, {"rose", "musk", "amber"}}
	prices := []float64{0, 1, 49.99, 100, 250, 10000}

	var products []models.Product
	for _, c := range categories {
		for _, b := range brands {
			for _, n := range notes {
				for _, p := range prices {
					products = append(products, models.Product{CategoryID: c, BrandID: b, Notes: n, Price: p})
				}
			}
		}
	}

	for i := range products {
		for j := range products {
			s := Score(products[i], products[j])
			if s < 0 || s > 1 || math.IsNaN(s) {
				t.Fatalf("Score(%+v, %+v) = %v, outside [0,1]", products[i], products[j], s)
			}
			if r := Score(products[j], products[i]); r != s {
				t.Fatalf("Score not symmetric: %v vs %v", s, r)
			}
		}
	}
}

func TestThresholdUsesUnroundedScore(t *testing.T) {
	// notes 0.2 + price 0.09996 = 0.29996, which rounds to 0.3
	a := models.Product{ID: 1, CategoryID: "c1", BrandID: "b1", Notes: []string{"oud", "rose"}, Price: 1.4998, Active: true}
	b := models.Product{ID: 2, CategoryID: "c2", BrandID: "b2", Notes: []string{"oud", "musk"}, Price: 2.5002, Active: true}

	if got := Score(a, b); got != 0.3 {
		t.Fatalf("Score() = %v, want rounded 0.3", got)
	}
	if meetsThreshold(rawScore(a, b), DefaultMinScore) {
		t.Errorf("rawScore() = %v passed threshold %v", rawScore(a, b), DefaultMinScore)
	}

	store := newMemoryStore(a, b)
	records, err := NewBuilder(store, store, DefaultConfig(), zerolog.Nop()).Rebuild(context.Background(), 1)
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Rebuild() kept %+v, want none below threshold", records)
	}
}

func TestMeetsThreshold(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want bool
	}{
		{name: "exact", raw: 0.3, want: true},
		{name: "summation noise below", raw: 0.1 + 0.2 - 1e-15, want: true},
		{name: "just under", raw: 0.29996, want: false},
		{name: "above", raw: 0.31, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meetsThreshold(tt.raw, 0.3); got != tt.want {
				t.Errorf("meetsThreshold(%v, 0.3) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
