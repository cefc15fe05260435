// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/saifi/internal/config"
	"github.com/tomtom215/saifi/internal/recommend"
	"github.com/tomtom215/saifi/internal/recommend/algorithms"
	"github.com/tomtom215/saifi/internal/recommend/storage"
)

// ErrNoTrainingData is returned when no interaction carries a usable rating.
var ErrNoTrainingData = errors.New("no rated interactions to train on")

// ArtifactWriter is the storage surface the trainer needs.
type ArtifactWriter interface {
	CurrentMetadata(ctx context.Context) (*storage.ModelMetadata, error)
	SaveArtifacts(ctx context.Context, model *algorithms.ALS, alpha float64, children, activities *recommend.Encoder, meta storage.ModelMetadata) (storage.ModelMetadata, error)
}

// Trainer fits an ALS model on the store's views and publishes it with
// matching encoders.
type Trainer struct {
	data      recommend.DataSource
	artifacts ArtifactWriter
	alpha     float64
	als       algorithms.ALSConfig
	logger    zerolog.Logger
}

// NewTrainer creates a trainer. alpha must match the serving engine's.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTrainer(data recommend.DataSource, artifacts ArtifactWriter, alpha float64, als algorithms.ALSConfig, logger zerolog.Logger) *Trainer {
	if alpha <= 0 {
		alpha = recommend.DefaultAlpha
	}
	return &Trainer{
		data:      data,
		artifacts: artifacts,
		alpha:     alpha,
		als:       als,
		logger:    logger.With().Str("component", "trainer").Logger(),
	}
}

// alsConfigFrom maps the training section; zero values keep ALS defaults.
func alsConfigFrom(cfg config.TrainingConfig) algorithms.ALSConfig {
	als := algorithms.DefaultALSConfig()
	if cfg.Factors > 0 {
		als.NumFactors = cfg.Factors
	}
	if cfg.Iterations > 0 {
		als.NumIterations = cfg.Iterations
	}
	if cfg.Regularization > 0 {
		als.Regularization = cfg.Regularization
	}
	if cfg.Workers > 0 {
		als.NumWorkers = cfg.Workers
	}
	if cfg.Seed != 0 {
		als.Seed = cfg.Seed
	}
	return als
}

type trainingViews struct {
	children     []recommend.ChildProfile
	activities   []recommend.ActivityProfile
	interactions []recommend.InteractionRecord
}

func (t *Trainer) readViews(ctx context.Context) (*trainingViews, error) {
	var v trainingViews
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		v.children, err = t.data.Children(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		v.activities, err = t.data.Activities(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		v.interactions, err = t.data.Interactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &v, nil
}

// sortedIDs returns the distinct ids in ascending order.
func sortedIDs[T any](rows []T, id func(T) string) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if s := id(r); s != "" {
			ids = append(ids, s)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Run trains and saves one model version.
func (t *Trainer) Run(ctx context.Context) (storage.ModelMetadata, error) {
	start := time.Now()

	views, err := t.readViews(ctx)
	if err != nil {
		return storage.ModelMetadata{}, fmt.Errorf("read training views: %w", err)
	}

	children := recommend.EncoderFromIDs(sortedIDs(views.children, func(c recommend.ChildProfile) string { return c.ID }))
	activities := recommend.EncoderFromIDs(sortedIDs(views.activities, func(a recommend.ActivityProfile) string { return a.ID }))

	matrix, stats := recommend.BuildMatrix(views.interactions, children, activities, t.alpha)
	if stats.Rejected() > 0 {
		t.logger.Warn().
			Int("unknown_child", stats.UnknownChild).
			Int("unknown_activity", stats.UnknownActivity).
			Int("missing_rating", stats.MissingRating).
			Msg("interaction rows left out of the training matrix")
	}
	if matrix == nil {
		return storage.ModelMetadata{}, ErrNoTrainingData
	}

	t.logger.Info().
		Int("children", children.Len()).
		Int("activities", activities.Len()).
		Int("nnz", matrix.NNZ()).
		Int("factors", t.als.NumFactors).
		Int("iterations", t.als.NumIterations).
		Msg("training ALS model")

	model := algorithms.NewALS(t.als)
	if err := model.Fit(ctx, matrix); err != nil {
		return storage.ModelMetadata{}, fmt.Errorf("fit ALS: %w", err)
	}

	version, err := t.nextVersion(ctx)
	if err != nil {
		return storage.ModelMetadata{}, err
	}

	meta := storage.ModelMetadata{
		Version:            version,
		InteractionCount:   matrix.NNZ(),
		ItemCount:          activities.Len(),
		UserCount:          children.Len(),
		TrainingDurationMS: time.Since(start).Milliseconds(),
	}
	saved, err := t.artifacts.SaveArtifacts(ctx, model, t.alpha, children, activities, meta)
	if err != nil {
		return storage.ModelMetadata{}, fmt.Errorf("save artifacts: %w", err)
	}
	return saved, nil
}

// nextVersion bumps the stored model's version. A missing or unreadable
// model starts again at 1.
func (t *Trainer) nextVersion(ctx context.Context) (int, error) {
	current, err := t.artifacts.CurrentMetadata(ctx)
	switch {
	case err == nil:
		return current.Version + 1, nil
	case errors.Is(err, storage.ErrArtifactNotFound):
		return 1, nil
	case errors.Is(err, storage.ErrMalformedArtifact):
		t.logger.Warn().Err(err).Msg("existing model is unreadable, restarting version numbering")
		return 1, nil
	default:
		return 0, fmt.Errorf("read current model: %w", err)
	}
}
