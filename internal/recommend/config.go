// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import (
	"fmt"
	"time"
)

// DefaultAlpha is the confidence weight applied to ratings.
const DefaultAlpha = 40.0

// Config contains all configuration for the recommendation engine.
type Config struct {
	// RefreshTTL is how long a snapshot stays fresh. Zero or negative means
	// every non-forced refresh rebuilds and no background refresh runs.
	RefreshTTL time.Duration `json:"refresh_ttl"`

	// Alpha scales ratings into matrix confidence: 1 + Alpha*rating.
	Alpha float64 `json:"alpha"`

	// RefreshBudget bounds how long a request waits on a best-effort
	// refresh before serving from the current snapshot.
	RefreshBudget time.Duration `json:"refresh_budget"`

	// ForceRefreshInterval is the minimum spacing between externally
	// triggered forced refreshes.
	ForceRefreshInterval time.Duration `json:"force_refresh_interval"`

	// DefaultLimit is used when a request asks for zero or fewer items.
	DefaultLimit int `json:"default_limit"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		RefreshTTL:           0,
		Alpha:                DefaultAlpha,
		RefreshBudget:        2 * time.Second,
		ForceRefreshInterval: 10 * time.Second,
		DefaultLimit:         10,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Alpha <= 0 {
		return fmt.Errorf("alpha must be positive, got %f", c.Alpha)
	}
	if c.RefreshBudget <= 0 {
		return fmt.Errorf("refresh_budget must be positive, got %v", c.RefreshBudget)
	}
	if c.ForceRefreshInterval < 0 {
		return fmt.Errorf("force_refresh_interval must be non-negative, got %v", c.ForceRefreshInterval)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	return nil
}
