// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saifi/internal/config"
	"github.com/tomtom215/saifi/internal/metrics"
	"github.com/tomtom215/saifi/internal/recommend"
	"github.com/tomtom215/saifi/internal/recommend/storage"
)

// buildEngineConfig maps the recommend section onto the engine config.
// Zero values keep the engine defaults.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	ec := recommend.DefaultConfig()
	ec.RefreshTTL = cfg.Recommend.RefreshTTL()
	if cfg.Recommend.Alpha > 0 {
		ec.Alpha = cfg.Recommend.Alpha
	}
	if cfg.Recommend.RefreshBudget > 0 {
		ec.RefreshBudget = cfg.Recommend.RefreshBudget
	}
	if cfg.Recommend.ForceRefreshInterval > 0 {
		ec.ForceRefreshInterval = cfg.Recommend.ForceRefreshInterval
	}
	if cfg.Recommend.DefaultLimit > 0 {
		ec.DefaultLimit = cfg.Recommend.DefaultLimit
	}
	return ec
}

// artifactPaths returns the model and encoder locations.
func artifactPaths(cfg *config.Config) storage.Paths {
	return storage.Paths{
		Model:           cfg.Recommend.ModelPath,
		ChildEncoder:    cfg.Recommend.ChildEncoderPath,
		ActivityEncoder: cfg.Recommend.ActivityEncoderPath,
	}
}

// initEngine creates the engine, loads its artifacts and builds the first
// snapshot.
//
// Missing or corrupt artifacts are fatal: without them every request would
// fall back. A failed first refresh is not, since the engine serves
// popularity fallbacks from an empty snapshot until the store recovers.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func initEngine(ctx context.Context, cfg *config.Config, data recommend.DataSource, opener *storage.Opener, logger zerolog.Logger) (*recommend.Engine, error) {
	artifacts := storage.NewArtifactStore(opener, artifactPaths(cfg), logger)

	engine, err := recommend.NewEngine(buildEngineConfig(cfg), artifacts, data, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	engine.SetObserver(metrics.EngineObserver{})

	if err := engine.LoadAssets(ctx); err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}

	if cfg.Recommend.RefreshOnStartup {
		outcome, err := engine.Refresh(ctx, true)
		metrics.RecordRefreshTrigger("startup", outcome.String())
		if err != nil {
			logger.Warn().Err(err).Msg("startup refresh failed, serving fallback until the next refresh")
		}
	}

	health := engine.Health()
	logger.Info().
		Int("children", health.Children).
		Int("activities", health.Activities).
		Int("matrix_nnz", health.MatrixNNZ).
		Uint64("snapshot_version", health.SnapshotVersion).
		Dur("refresh_ttl", cfg.Recommend.RefreshTTL()).
		Msg("recommendation engine ready")

	return engine, nil
}
