// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saifi/internal/recommend"
	"github.com/tomtom215/saifi/internal/recommend/algorithms"
)

// Paths names the three artifact locations.
type Paths struct {
	Model           string
	ChildEncoder    string
	ActivityEncoder string
}

// ArtifactStore loads and saves the model and encoders. It implements
// recommend.ArtifactSource.
type ArtifactStore struct {
	opener *Opener
	paths  Paths
	logger zerolog.Logger
}

// NewArtifactStore creates an artifact store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewArtifactStore(opener *Opener, paths Paths, logger zerolog.Logger) *ArtifactStore {
	return &ArtifactStore{
		opener: opener,
		paths:  paths,
		logger: logger.With().Str("component", "artifacts").Logger(),
	}
}

// LoadArtifacts reads the model and both encoders.
func (s *ArtifactStore) LoadArtifacts(ctx context.Context) (*recommend.Artifacts, error) {
	children, err := s.readEncoder(ctx, s.paths.ChildEncoder)
	if err != nil {
		return nil, fmt.Errorf("child encoder: %w", err)
	}
	activities, err := s.readEncoder(ctx, s.paths.ActivityEncoder)
	if err != nil {
		return nil, fmt.Errorf("activity encoder: %w", err)
	}

	state, meta, err := s.readModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	model, err := algorithms.NewALSFromFactors(algorithms.ALSConfig{
		Regularization: state.Regularization,
	}, state.UserFactors, state.ItemFactors)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	if n := model.NumUsers(); n != children.Len() {
		// Extra encoder rows are folded in at serve time.
		s.logger.Warn().
			Int("model_children", n).
			Int("encoder_children", children.Len()).
			Msg("model and child encoder sizes differ")
	}

	s.logger.Info().
		Str("model", s.paths.Model).
		Int("version", meta.Version).
		Time("trained_at", meta.TrainedAt).
		Int("children", children.Len()).
		Int("activities", activities.Len()).
		Msg("artifacts loaded")

	return &recommend.Artifacts{
		Model:           model,
		ChildEncoder:    children,
		ActivityEncoder: activities,
	}, nil
}

func (s *ArtifactStore) readEncoder(ctx context.Context, path string) (*recommend.Encoder, error) {
	r, err := s.opener.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }() //nolint:errcheck // error on close after read is not actionable
	return DecodeEncoder(r)
}

// CurrentMetadata returns the metadata of the stored model. It returns an
// error wrapping ErrArtifactNotFound when no model has been saved yet.
func (s *ArtifactStore) CurrentMetadata(ctx context.Context) (*ModelMetadata, error) {
	_, meta, err := s.readModel(ctx)
	return meta, err
}

func (s *ArtifactStore) readModel(ctx context.Context) (*ALSModelState, *ModelMetadata, error) {
	r, err := s.opener.Open(ctx, s.paths.Model)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = r.Close() }() //nolint:errcheck // error on close after read is not actionable
	return DecodeModel(r)
}

// SaveArtifacts writes a trained model and its encoders. The encoders are
// written before the model so a reader that sees the new model also sees
// matching encoders.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *ArtifactStore) SaveArtifacts(ctx context.Context, model *algorithms.ALS, alpha float64, children, activities *recommend.Encoder, meta ModelMetadata) (ModelMetadata, error) {
	if err := s.write(ctx, s.paths.ChildEncoder, func(w io.Writer) error {
		return EncodeEncoder(w, children)
	}); err != nil {
		return meta, fmt.Errorf("child encoder: %w", err)
	}
	if err := s.write(ctx, s.paths.ActivityEncoder, func(w io.Writer) error {
		return EncodeEncoder(w, activities)
	}); err != nil {
		return meta, fmt.Errorf("activity encoder: %w", err)
	}

	state := &ALSModelState{
		UserFactors:    model.GetUserFactors(),
		ItemFactors:    model.GetItemFactors(),
		Regularization: model.Config().Regularization,
		Alpha:          alpha,
	}
	meta.Name = model.Name()
	meta.TrainedAt = model.LastTrainedAt()

	var saved ModelMetadata
	if err := s.write(ctx, s.paths.Model, func(w io.Writer) error {
		var err error
		saved, err = EncodeModel(w, state, meta)
		return err
	}); err != nil {
		return meta, fmt.Errorf("model: %w", err)
	}

	s.logger.Info().
		Str("model", s.paths.Model).
		Int("version", saved.Version).
		Str("checksum", saved.Checksum).
		Int64("size_bytes", saved.SizeBytes).
		Msg("artifacts saved")
	return saved, nil
}

// write streams fn's output to path. A failed write never replaces the
// existing artifact: local files are discarded and Cloud Storage uploads
// are cancelled before they commit.
func (s *ArtifactStore) write(ctx context.Context, path string, fn func(io.Writer) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.opener.Create(ctx, path)
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		if a, ok := w.(interface{ Abort() }); ok {
			a.Abort()
		} else {
			cancel()
			_ = w.Close() //nolint:errcheck // the write error is the one worth reporting
		}
		return err
	}
	return w.Close()
}

// Ensure interface compliance.
var _ recommend.ArtifactSource = (*ArtifactStore)(nil)
