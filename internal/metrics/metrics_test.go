// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
	}{
		{name: "successful select", operation: "SELECT", table: "products"},
		{name: "failed insert", operation: "INSERT", table: "product_views", err: errors.New("connection refused")},
		{
			name:      "long error is truncated",
			operation: "DELETE",
			table:     "product_similarities",
			err:       errors.New(strings.Repeat("x", 120)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)
			if tt.err == nil {
				return
			}
			label := tt.err.Error()
			if len(label) > 50 {
				label = label[:50]
			}
			if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, label)); got < 1 {
				t.Errorf("DBQueryErrors(%s) = %v, want >= 1", tt.table, got)
			}
		})
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequests.WithLabelValues("cache_hit"))
	RecordRecommendation("cache_hit", time.Millisecond)
	after := testutil.ToFloat64(RecommendRequests.WithLabelValues("cache_hit"))

	if after-before != 1 {
		t.Errorf("RecommendRequests delta = %v, want 1", after-before)
	}
}

func TestRecordStage(t *testing.T) {
	before := testutil.ToFloat64(RecommendStageCandidates.WithLabelValues("similar"))
	RecordStage("similar", 0)
	RecordStage("similar", 3)
	after := testutil.ToFloat64(RecommendStageCandidates.WithLabelValues("similar"))

	if after-before != 3 {
		t.Errorf("RecommendStageCandidates delta = %v, want 3", after-before)
	}
}

func TestRecordRebuild(t *testing.T) {
	before := testutil.ToFloat64(SimilarityRebuilds.WithLabelValues("soft_failure"))
	RecordRebuild("soft_failure", 0, 10*time.Millisecond)
	after := testutil.ToFloat64(SimilarityRebuilds.WithLabelValues("soft_failure"))

	if after-before != 1 {
		t.Errorf("SimilarityRebuilds delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("APIActiveRequests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("APIActiveRequests = %v, want %v", got, before)
	}
}
