// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/sillage/internal/breaker"
)

const (
	// DefaultTopK is the number of similarity records kept per product.
	DefaultTopK = 10

	// DefaultMinScore is the lowest similarity score that is persisted.
	DefaultMinScore = 0.3

	// DefaultRecentViews is how many view events seed the recent-view stage.
	DefaultRecentViews = 5
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// StageTimeout bounds the data access of a single pipeline stage.
	// A stage that exceeds it contributes no candidates.
	StageTimeout time.Duration `json:"stage_timeout"`

	// RecentViews is how many of the user's latest views are expanded.
	RecentViews int `json:"recent_views"`

	// TopK is the number of similarity records kept per product.
	TopK int `json:"top_k"`

	// MinScore is the inclusive lower bound for persisted similarity scores.
	MinScore float64 `json:"min_score"`

	// Breaker configures the per-stage circuit breakers.
	Breaker breaker.Settings `json:"breaker"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		StageTimeout: 2 * time.Second,
		RecentViews:  DefaultRecentViews,
		TopK:         DefaultTopK,
		MinScore:     DefaultMinScore,
		Breaker:      breaker.DefaultSettings(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.StageTimeout <= 0 {
		return fmt.Errorf("stage_timeout must be positive, got %v", c.StageTimeout)
	}
	if c.RecentViews < 0 {
		return fmt.Errorf("recent_views must be non-negative, got %d", c.RecentViews)
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min_score must be in [0, 1], got %f", c.MinScore)
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be in (0, 1], got %f", c.Breaker.FailureRatio)
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("breaker.timeout must be positive, got %v", c.Breaker.Timeout)
	}
	return nil
}
