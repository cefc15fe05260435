// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saifi/internal/recommend"
)

// Recommender is the engine surface the handlers depend on.
type Recommender interface {
	Recommend(ctx context.Context, childID string, limit int) (*recommend.Result, error)
	TriggerRefresh(ctx context.Context) (recommend.RefreshOutcome, error)
	Health() recommend.Health
}

// DatastoreProbe reports on the backing store without querying the views.
type DatastoreProbe interface {
	Ping(ctx context.Context) error
	BreakerState() string
}

// HandlerConfig bounds request parameters.
type HandlerConfig struct {
	DefaultLimit int
	MaxLimit     int
	// RequestTimeout caps a single recommendation or refresh call.
	RequestTimeout time.Duration
	// RefreshInterval is the engine's forced refresh throttle window,
	// advertised in Retry-After when a refresh is throttled.
	RefreshInterval time.Duration
}

// Handler serves the recommendation HTTP endpoints.
type Handler struct {
	engine Recommender
	store  DatastoreProbe
	config HandlerConfig
	logger zerolog.Logger
}

// NewHandler creates a handler. store may be nil, in which case health
// responses omit the datastore section.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(engine Recommender, store DatastoreProbe, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 10 * time.Second
	}
	return &Handler{
		engine: engine,
		store:  store,
		config: cfg,
		logger: logger.With().Str("component", "api").Logger(),
	}
}
