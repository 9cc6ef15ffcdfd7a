// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package recommend

import (
	"math"

	"github.com/tomtom215/sillage/internal/models"
)

// Term weights. They sum to 1.0.
const (
	categoryWeight = 0.3
	brandWeight    = 0.1
	notesWeight    = 0.4
	priceWeight    = 0.2
)

// scorePrecision is the number of decimal places kept in a stored score.
const scorePrecision = 1e4

// scoreTolerance absorbs float summation error in threshold checks.
const scoreTolerance = 1e-9

// Score returns the similarity of two products in [0, 1], rounded to four
// decimal places for storage and display.
//
// The score is the sum of four clamped terms: category match, brand match,
// note overlap (distinct notes in common over the larger distinct note set)
// and price proximity. Threshold checks use rawScore, not this value.
func Score(a, b models.Product) float64 {
	return roundScore(rawScore(a, b))
}

// rawScore is the unrounded sum of the four terms, clamped to [0, 1].
func rawScore(a, b models.Product) float64 {
	total := categoryTerm(a, b) + brandTerm(a, b) + notesTerm(a, b) + priceTerm(a, b)
	return clamp(total, 0, 1)
}

func roundScore(s float64) float64 {
	return clamp(math.Round(s*scorePrecision)/scorePrecision, 0, 1)
}

// meetsThreshold reports whether an unrounded score reaches threshold.
func meetsThreshold(raw, threshold float64) bool {
	return raw >= threshold-scoreTolerance
}

func categoryTerm(a, b models.Product) float64 {
	if a.CategoryID == b.CategoryID {
		return categoryWeight
	}
	return 0
}

func brandTerm(a, b models.Product) float64 {
	if a.BrandID == b.BrandID {
		return brandWeight
	}
	return 0
}

func notesTerm(a, b models.Product) float64 {
	setA := noteSet(a.Notes)
	setB := noteSet(b.Notes)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	shared := 0
	for n := range setA {
		if _, ok := setB[n]; ok {
			shared++
		}
	}
	larger := max(len(setA), len(setB))
	return clamp(notesWeight*float64(shared)/float64(larger), 0, notesWeight)
}

func priceTerm(a, b models.Product) float64 {
	avg := (a.Price + b.Price) / 2
	if avg == 0 {
		return priceWeight
	}
	d := math.Abs(a.Price - b.Price)
	return clamp(priceWeight-(d/avg)*priceWeight, 0, priceWeight)
}

func noteSet(notes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		set[n] = struct{}{}
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
