// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saifi/internal/config"
	"github.com/tomtom215/saifi/internal/recommend"
	"github.com/tomtom215/saifi/internal/recommend/algorithms"
	"github.com/tomtom215/saifi/internal/recommend/storage"
)

type fakeData struct {
	children     []recommend.ChildProfile
	activities   []recommend.ActivityProfile
	interactions []recommend.InteractionRecord
	err          error
}

func (f *fakeData) Children(context.Context) ([]recommend.ChildProfile, error) {
	return f.children, f.err
}

func (f *fakeData) Activities(context.Context) ([]recommend.ActivityProfile, error) {
	return f.activities, nil
}

func (f *fakeData) Interactions(context.Context) ([]recommend.InteractionRecord, error) {
	return f.interactions, nil
}

func rating(v float64) *float64 { return &v }

func marketplace() *fakeData {
	return &fakeData{
		// c2 appears twice: one row per booked provider.
		children: []recommend.ChildProfile{{ID: "c3"}, {ID: "c1"}, {ID: "c2"}, {ID: "c2"}},
		activities: []recommend.ActivityProfile{
			{ID: "a2"}, {ID: "a1"}, {ID: "a3"},
		},
		interactions: []recommend.InteractionRecord{
			{ChildID: "c1", ActivityID: "a1", Rating: rating(5)},
			{ChildID: "c1", ActivityID: "a2", Rating: rating(3)},
			{ChildID: "c2", ActivityID: "a1", Rating: rating(4)},
			{ChildID: "c2", ActivityID: "a3"},
			{ChildID: "ghost", ActivityID: "a1", Rating: rating(5)},
		},
	}
}

func newTestArtifacts(t *testing.T) (*storage.ArtifactStore, storage.Paths) {
	t.Helper()
	dir := t.TempDir()
	paths := storage.Paths{
		Model:           filepath.Join(dir, "als_model.gob.gz"),
		ChildEncoder:    filepath.Join(dir, "child_encoder.json"),
		ActivityEncoder: filepath.Join(dir, "activity_encoder.json"),
	}
	return storage.NewArtifactStore(storage.NewOpener(), paths, zerolog.Nop()), paths
}

func testALSConfig() algorithms.ALSConfig {
	return algorithms.ALSConfig{NumFactors: 4, NumIterations: 3, Regularization: 0.01, NumWorkers: 1, Seed: 7}
}

func TestTrainer_Run(t *testing.T) {
	ctx := context.Background()
	artifacts, _ := newTestArtifacts(t)
	trainer := NewTrainer(marketplace(), artifacts, 40, testALSConfig(), zerolog.Nop())

	meta, err := trainer.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if meta.Version != 1 {
		t.Errorf("Version = %d, want 1", meta.Version)
	}
	if meta.UserCount != 3 || meta.ItemCount != 3 {
		t.Errorf("counts = %d children / %d activities, want 3/3", meta.UserCount, meta.ItemCount)
	}
	if meta.InteractionCount != 3 {
		t.Errorf("InteractionCount = %d, want 3 (unrated and unknown rows dropped)", meta.InteractionCount)
	}

	art, err := artifacts.LoadArtifacts(ctx)
	if err != nil {
		t.Fatalf("LoadArtifacts() error = %v", err)
	}
	for i, want := range []string{"c1", "c2", "c3"} {
		if got, _ := art.ChildEncoder.ID(i); got != want {
			t.Errorf("child index %d = %q, want %q", i, got, want)
		}
	}
	for i, want := range []string{"a1", "a2", "a3"} {
		if got, _ := art.ActivityEncoder.ID(i); got != want {
			t.Errorf("activity index %d = %q, want %q", i, got, want)
		}
	}

	// A second run bumps the version.
	meta, err = trainer.Run(ctx)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if meta.Version != 2 {
		t.Errorf("second Version = %d, want 2", meta.Version)
	}
}

func TestTrainer_Run_Errors(t *testing.T) {
	tests := []struct {
		name string
		data *fakeData
		want error
	}{
		{
			name: "no rated interactions",
			data: &fakeData{
				children:     []recommend.ChildProfile{{ID: "c1"}},
				activities:   []recommend.ActivityProfile{{ID: "a1"}},
				interactions: []recommend.InteractionRecord{{ChildID: "c1", ActivityID: "a1"}},
			},
			want: ErrNoTrainingData,
		},
		{
			name: "store failure",
			data: &fakeData{err: errors.New("connection refused")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifacts, paths := newTestArtifacts(t)
			trainer := NewTrainer(tt.data, artifacts, 40, testALSConfig(), zerolog.Nop())

			_, err := trainer.Run(context.Background())
			if err == nil {
				t.Fatal("Run() error = nil, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
			if _, statErr := os.Stat(paths.Model); !os.IsNotExist(statErr) {
				t.Errorf("model written despite failure (stat error = %v)", statErr)
			}
		})
	}
}

func TestTrainer_MalformedModelRestartsVersioning(t *testing.T) {
	artifacts, paths := newTestArtifacts(t)
	if err := os.WriteFile(paths.Model, []byte("not a model"), 0o600); err != nil {
		t.Fatal(err)
	}

	trainer := NewTrainer(marketplace(), artifacts, 40, testALSConfig(), zerolog.Nop())
	meta, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if meta.Version != 1 {
		t.Errorf("Version = %d, want 1", meta.Version)
	}
}

func TestALSConfigFrom(t *testing.T) {
	defaults := algorithms.DefaultALSConfig()

	got := alsConfigFrom(config.TrainingConfig{})
	if got != defaults {
		t.Errorf("alsConfigFrom(zero) = %+v, want defaults %+v", got, defaults)
	}

	got = alsConfigFrom(config.TrainingConfig{Factors: 64, Iterations: 20, Regularization: 0.1, Workers: 8, Seed: 3})
	want := algorithms.ALSConfig{NumFactors: 64, NumIterations: 20, Regularization: 0.1, NumWorkers: 8, Seed: 3}
	if got != want {
		t.Errorf("alsConfigFrom() = %+v, want %+v", got, want)
	}
}

func TestNewTrainer_DefaultAlpha(t *testing.T) {
	trainer := NewTrainer(&fakeData{}, nil, 0, testALSConfig(), zerolog.Nop())
	if trainer.alpha != recommend.DefaultAlpha {
		t.Errorf("alpha = %v, want %v", trainer.alpha, recommend.DefaultAlpha)
	}
}
