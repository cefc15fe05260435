// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Artifacts are the pretrained objects produced by the offline trainer.
type Artifacts struct {
	Model           Model
	ChildEncoder    *Encoder
	ActivityEncoder *Encoder
}

// ArtifactSource loads the model and both encoders.
type ArtifactSource interface {
	LoadArtifacts(ctx context.Context) (*Artifacts, error)
}

// Assets are the loaded artifacts plus derived lookups. They never change
// once loaded.
type Assets struct {
	Model           Model
	Children        *Encoder
	Activities      *Encoder
	ActivityReverse ReverseMap
	LoadedAt        time.Time
}

// assetLoader loads artifacts at most once. A failure is remembered and
// returned to every later caller.
type assetLoader struct {
	source ArtifactSource
	now    func() time.Time

	loaded atomic.Pointer[Assets]
	mu     sync.Mutex
	err    error
}

func newAssetLoader(source ArtifactSource, now func() time.Time) *assetLoader {
	return &assetLoader{source: source, now: now}
}

// get returns loaded assets, loading them on first use.
func (l *assetLoader) get(ctx context.Context) (*Assets, error) {
	if a := l.loaded.Load(); a != nil {
		return a, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if a := l.loaded.Load(); a != nil {
		return a, nil
	}
	if l.err != nil {
		return nil, l.err
	}

	// A cancelled request must not poison the sticky error.
	a, err := l.load(context.WithoutCancel(ctx))
	if err != nil {
		l.err = fmt.Errorf("%w: %w", ErrAssetsUnavailable, err)
		return nil, l.err
	}
	l.loaded.Store(a)
	return a, nil
}

// peek returns the current state without triggering a load.
func (l *assetLoader) peek() (*Assets, error) {
	if a := l.loaded.Load(); a != nil {
		return a, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded.Load(), l.err
}

func (l *assetLoader) load(ctx context.Context) (*Assets, error) {
	if l.source == nil {
		return nil, errors.New("no artifact source configured")
	}

	art, err := l.source.LoadArtifacts(ctx)
	if err != nil {
		return nil, err
	}
	if art == nil || art.Model == nil {
		return nil, errors.New("artifact source returned no model")
	}
	if art.ChildEncoder == nil || art.ActivityEncoder == nil {
		return nil, errors.New("artifact source returned no encoder")
	}

	if counter, ok := art.Model.(ItemCounter); ok {
		if n := counter.NumItems(); n != art.ActivityEncoder.Len() {
			return nil, fmt.Errorf("model has %d items but activity encoder has %d", n, art.ActivityEncoder.Len())
		}
	}

	return &Assets{
		Model:           art.Model,
		Children:        art.ChildEncoder,
		Activities:      art.ActivityEncoder,
		ActivityReverse: art.ActivityEncoder.Reverse(),
		LoadedAt:        l.now(),
	}, nil
}
