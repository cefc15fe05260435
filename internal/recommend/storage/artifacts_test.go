// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saifi/internal/recommend"
	"github.com/tomtom215/saifi/internal/recommend/algorithms"
)

func testPaths(dir string) Paths {
	return Paths{
		Model:           filepath.Join(dir, "saifi_model.gob.gz"),
		ChildEncoder:    filepath.Join(dir, "child_encoder.json"),
		ActivityEncoder: filepath.Join(dir, "activity_encoder.json"),
	}
}

func TestArtifactStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	children := recommend.EncoderFromIDs([]string{"c1", "c2"})
	activities := recommend.EncoderFromIDs([]string{"a1", "a2", "a3"})

	m := recommend.NewMatrix(2, 3, []recommend.Entry{
		{Row: 0, Col: 0, Value: 201},
		{Row: 1, Col: 2, Value: 121},
	})
	model := algorithms.NewALS(algorithms.ALSConfig{NumFactors: 4, NumIterations: 3, Seed: 1})
	if err := model.Fit(ctx, m); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	store := NewArtifactStore(NewOpener(), testPaths(t.TempDir()), zerolog.Nop())
	saved, err := store.SaveArtifacts(ctx, model, 40, children, activities, ModelMetadata{Version: 2, InteractionCount: 2})
	if err != nil {
		t.Fatalf("SaveArtifacts() error = %v", err)
	}
	if saved.Name != "als" || saved.Version != 2 {
		t.Errorf("saved metadata = %+v", saved)
	}

	art, err := store.LoadArtifacts(ctx)
	if err != nil {
		t.Fatalf("LoadArtifacts() error = %v", err)
	}
	if art.ChildEncoder.Len() != 2 || art.ActivityEncoder.Len() != 3 {
		t.Errorf("encoder sizes = %d/%d, want 2/3", art.ChildEncoder.Len(), art.ActivityEncoder.Len())
	}

	loaded, ok := art.Model.(*algorithms.ALS)
	if !ok {
		t.Fatalf("Model type = %T, want *algorithms.ALS", art.Model)
	}
	if loaded.NumItems() != 3 {
		t.Errorf("NumItems() = %d, want 3", loaded.NumItems())
	}

	want, _ := model.Recommend(0, m.Row(0), 3)
	got, err := loaded.Recommend(0, m.Row(0), 3)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Recommend()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestArtifactStore_LoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, p Paths)
		want  error
	}{
		{
			name:  "missing files",
			setup: func(t *testing.T, p Paths) {},
			want:  ErrArtifactNotFound,
		},
		{
			name: "corrupt model",
			want: ErrMalformedArtifact,
			setup: func(t *testing.T, p Paths) {
				writeFile(t, p.ChildEncoder, `{"c1":0}`)
				writeFile(t, p.ActivityEncoder, `{"a1":0}`)
				writeFile(t, p.Model, "garbage")
			},
		},
		{
			name: "malformed encoder",
			want: ErrMalformedArtifact,
			setup: func(t *testing.T, p Paths) {
				writeFile(t, p.ChildEncoder, `{"c1":3}`)
				writeFile(t, p.ActivityEncoder, `{"a1":0}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPaths(t.TempDir())
			tt.setup(t, p)
			store := NewArtifactStore(NewOpener(), p, zerolog.Nop())
			_, err := store.LoadArtifacts(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadArtifacts() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestArtifactStore_CurrentMetadata(t *testing.T) {
	ctx := context.Background()
	store := NewArtifactStore(NewOpener(), testPaths(t.TempDir()), zerolog.Nop())

	if _, err := store.CurrentMetadata(ctx); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("CurrentMetadata() before save error = %v, want ErrArtifactNotFound", err)
	}

	m := recommend.NewMatrix(1, 1, []recommend.Entry{{Row: 0, Col: 0, Value: 41}})
	model := algorithms.NewALS(algorithms.ALSConfig{NumFactors: 2, NumIterations: 1, Seed: 1})
	if err := model.Fit(ctx, m); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	enc := recommend.EncoderFromIDs([]string{"x"})
	if _, err := store.SaveArtifacts(ctx, model, 40, enc, enc, ModelMetadata{Version: 7}); err != nil {
		t.Fatalf("SaveArtifacts() error = %v", err)
	}

	meta, err := store.CurrentMetadata(ctx)
	if err != nil {
		t.Fatalf("CurrentMetadata() error = %v", err)
	}
	if meta.Version != 7 || meta.Name != "als" {
		t.Errorf("CurrentMetadata() = %+v, want version 7 als", meta)
	}
}
