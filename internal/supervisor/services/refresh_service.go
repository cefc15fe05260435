// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saifi/internal/metrics"
	"github.com/tomtom215/saifi/internal/recommend"
)

// SnapshotRefresher is the engine surface the refresh loop drives.
type SnapshotRefresher interface {
	Refresh(ctx context.Context, force bool) (recommend.RefreshOutcome, error)
}

// RefreshServiceConfig holds configuration for the periodic refresh loop.
type RefreshServiceConfig struct {
	// Interval between staleness checks. Normally the snapshot TTL, so a
	// tick finds the snapshot just expired and rebuilds it off the request
	// path.
	Interval time.Duration

	// Timeout bounds one rebuild. Default: 5m
	Timeout time.Duration
}

// RefreshService keeps the snapshot warm so that requests rarely pay for
// a rebuild. Ticks go through the same TTL check as request-driven
// refreshes, so a snapshot that a request or trigger just rebuilt is
// skipped.
type RefreshService struct {
	engine SnapshotRefresher
	config RefreshServiceConfig
	logger zerolog.Logger
	name   string
}

// NewRefreshService creates the refresh loop. A non-positive interval
// defaults to one minute.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRefreshService(engine SnapshotRefresher, cfg RefreshServiceConfig, logger zerolog.Logger) *RefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &RefreshService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "snapshot-refresh").Logger(),
		name:   "snapshot-refresh",
	}
}

// Serve implements suture.Service.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.config.Interval).Msg("snapshot refresh loop starting")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("snapshot refresh loop shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *RefreshService) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	outcome, err := s.engine.Refresh(ctx, false)
	metrics.RecordRefreshTrigger("ticker", outcome.String())
	if err != nil {
		// The engine keeps serving the previous snapshot.
		s.logger.Warn().Err(err).Msg("scheduled refresh failed")
		return
	}
	if outcome == recommend.RefreshRebuilt {
		s.logger.Debug().Dur("duration", time.Since(start)).Msg("scheduled refresh rebuilt snapshot")
	}
}

// String names the service in suture's log events.
func (s *RefreshService) String() string {
	return s.name
}
