// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Command trainer fits the ALS model offline and writes it, with the child
// and activity encoders, to the configured artifact locations. It reads the
// same configuration as the server:
//
//	export SAIFI_MODEL_PATH=gs://saifi-models/als_model.gob.gz
//	export DB_HOST=postgres DB_NAME=saifi DB_USER=saifi DB_PASSWORD=...
//	./saifi-trainer
//
// Running servers pick the new model up on restart.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/saifi/internal/config"
	"github.com/tomtom215/saifi/internal/database"
	"github.com/tomtom215/saifi/internal/logging"
	"github.com/tomtom215/saifi/internal/recommend/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if code := run(ctx, cfg); code != 0 {
		stop()
		os.Exit(code)
	}
}

// run returns the process exit code so deferred closes run before exit.
func run(ctx context.Context, cfg *config.Config) int {
	store, err := database.Open(ctx, &cfg.Database, logging.Logger())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to open data store")
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing data store")
		}
	}()

	opener := storage.NewOpener()
	defer func() {
		if err := opener.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing artifact storage")
		}
	}()

	artifacts := storage.NewArtifactStore(opener, storage.Paths{
		Model:           cfg.Recommend.ModelPath,
		ChildEncoder:    cfg.Recommend.ChildEncoderPath,
		ActivityEncoder: cfg.Recommend.ActivityEncoderPath,
	}, logging.Logger())

	trainer := NewTrainer(store, artifacts, cfg.Recommend.Alpha, alsConfigFrom(cfg.Training), logging.Logger())

	start := time.Now()
	meta, err := trainer.Run(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Training failed")
		return 1
	}

	logging.Info().
		Int("version", meta.Version).
		Int("children", meta.UserCount).
		Int("activities", meta.ItemCount).
		Int("interactions", meta.InteractionCount).
		Dur("duration", time.Since(start)).
		Msg("Model trained and saved")
	return 0
}
