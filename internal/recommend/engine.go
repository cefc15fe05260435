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

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Engine serves recommendations from the currently installed snapshot.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	assets  *assetLoader
	builder *SnapshotBuilder

	current   atomic.Pointer[Snapshot]
	version   atomic.Uint64
	refreshMu sync.Mutex
	inflight  singleflight.Group
	forced    *rate.Limiter

	obs atomic.Pointer[observerBox]

	now func() time.Time
}

type observerBox struct {
	Observer
}

// NewEngine creates an engine. Assets are loaded lazily on first use, or
// eagerly with LoadAssets.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, artifacts ArtifactSource, data DataSource, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if data == nil {
		return nil, errors.New("data source is required")
	}

	logger = logger.With().Str("component", "recommend").Logger()

	e := &Engine{
		config:  cfg,
		logger:  logger,
		builder: NewSnapshotBuilder(data, cfg.Alpha, logger),
		forced:  rate.NewLimiter(rate.Every(cfg.ForceRefreshInterval), 1),
		now:     time.Now,
	}
	e.assets = newAssetLoader(artifacts, func() time.Time { return e.now() })
	e.current.Store(emptySnapshot())
	return e, nil
}

// SetObserver installs an observer. Passing nil restores the no-op default.
func (e *Engine) SetObserver(o Observer) {
	if o == nil {
		e.obs.Store(nil)
		return
	}
	e.obs.Store(&observerBox{o})
}

func (e *Engine) observer() Observer {
	if box := e.obs.Load(); box != nil {
		return box.Observer
	}
	return nopObserver{}
}

// LoadAssets loads the model and encoders if they are not resident yet.
// A failure is permanent for the life of the engine.
func (e *Engine) LoadAssets(ctx context.Context) error {
	a, err := e.assets.get(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to load recommendation assets")
		return err
	}
	e.logger.Info().
		Int("children", a.Children.Len()).
		Int("activities", a.Activities.Len()).
		Msg("recommendation assets loaded")
	return nil
}

// Snapshot returns the currently installed snapshot.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Recommend returns at most limit activities for childID. A limit of zero
// or less uses the configured default.
//
// The only error is a failure to load assets. Missing data, unknown
// children and model failures all produce a fallback Result.
func (e *Engine) Recommend(ctx context.Context, childID string, limit int) (*Result, error) {
	start := e.now()
	if limit <= 0 {
		limit = e.config.DefaultLimit
	}

	assets, err := e.assets.get(ctx)
	if err != nil {
		return nil, err
	}

	snap := e.current.Load()
	if !snap.HasMatrix() || len(snap.Activities) == 0 {
		e.refreshWithinBudget(ctx)
		snap = e.current.Load()
	}

	result := e.serve(snap, assets, childID, limit)
	e.observer().RecommendServed(result, e.now().Sub(start))
	return result, nil
}

func (e *Engine) serve(snap *Snapshot, assets *Assets, childID string, limit int) *Result {
	result := &Result{ChildID: childID, SnapshotVersion: snap.Version}

	idx, known := assets.Children.Index(childID)
	switch {
	case !known:
		result.Reason = ReasonUnknownChild
	case !snap.HasMatrix():
		result.Reason = ReasonNoMatrix
	default:
		items, err := scoreWarm(snap, childID, idx, limit)
		if err == nil {
			result.Items = items
			result.Source = SourceALS
			return result
		}
		e.logger.Error().Err(err).Str("child_id", childID).Msg("warm path scoring failed, serving fallback")
		result.Reason = ReasonScoringFailed
	}

	result.Items = fallback(snap, childID, limit)
	result.Source = SourceFallback
	return result
}

// TriggerRefresh forces a rebuild for an external change notification.
// Calls closer together than ForceRefreshInterval return
// ErrRefreshThrottled without rebuilding.
func (e *Engine) TriggerRefresh(ctx context.Context) (RefreshOutcome, error) {
	if !e.forced.Allow() {
		return RefreshSkipped, ErrRefreshThrottled
	}
	return e.Refresh(ctx, true)
}

// Health reports readiness without loading assets or refreshing.
func (e *Engine) Health() Health {
	var h Health

	assets, err := e.assets.peek()
	h.ModelLoaded = assets != nil
	if err != nil {
		h.AssetError = err.Error()
	}

	snap := e.current.Load()
	h.MatrixLoaded = snap.HasMatrix()
	h.SnapshotVersion = snap.Version
	h.LastRefresh = snap.RefreshedAt
	h.Children = len(snap.Children)
	h.Activities = len(snap.Activities)
	h.PopularActivities = len(snap.Popular)
	h.MatrixNNZ = matrixNNZ(snap)
	h.RejectedRows = snap.Stats.Rejected()
	return h
}
