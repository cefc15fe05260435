// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import (
	"context"
	"time"
)

// RefreshOutcome describes what a Refresh call did.
type RefreshOutcome int

const (
	// RefreshSkipped means the snapshot was still fresh.
	RefreshSkipped RefreshOutcome = iota
	// RefreshRebuilt means a new snapshot was installed.
	RefreshRebuilt
	// RefreshFailed means the rebuild failed and the old snapshot was kept.
	RefreshFailed
)

// String returns the outcome name used in logs and metrics.
func (o RefreshOutcome) String() string {
	switch o {
	case RefreshSkipped:
		return "skipped"
	case RefreshRebuilt:
		return "rebuilt"
	case RefreshFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// fresh reports whether the installed snapshot is younger than the TTL.
func (e *Engine) fresh() bool {
	if e.config.RefreshTTL <= 0 {
		return false
	}
	snap := e.current.Load()
	if snap.RefreshedAt.IsZero() {
		return false
	}
	return e.now().Sub(snap.RefreshedAt) < e.config.RefreshTTL
}

// Refresh rebuilds the snapshot unless it is fresh and force is false.
//
// At most one rebuild runs at a time. Callers that raced past the freshness
// check wait for the lock and then re-check, so a burst of concurrent
// refreshes produces a single rebuild. Readers are never blocked.
//
// On failure the installed snapshot is kept and the error is returned.
func (e *Engine) Refresh(ctx context.Context, force bool) (RefreshOutcome, error) {
	if !force && e.fresh() {
		return RefreshSkipped, nil
	}

	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()

	if !force && e.fresh() {
		return RefreshSkipped, nil
	}

	start := e.now()
	snap, err := e.rebuild(ctx)
	elapsed := e.now().Sub(start)
	if err != nil {
		e.logger.Warn().Err(err).Dur("elapsed", elapsed).Msg("snapshot refresh failed, keeping previous snapshot")
		e.observer().RefreshCompleted(RefreshFailed, elapsed, e.current.Load())
		return RefreshFailed, err
	}

	e.current.Store(snap)

	e.logger.Info().
		Uint64("version", snap.Version).
		Int("children", len(snap.Children)).
		Int("activities", len(snap.Activities)).
		Int("popular", len(snap.Popular)).
		Int("ratings", snap.Stats.Accepted).
		Int("matrix_nnz", matrixNNZ(snap)).
		Dur("elapsed", elapsed).
		Msg("snapshot refreshed")
	e.observer().RefreshCompleted(RefreshRebuilt, elapsed, snap)
	return RefreshRebuilt, nil
}

func (e *Engine) rebuild(ctx context.Context) (*Snapshot, error) {
	assets, err := e.assets.get(ctx)
	if err != nil {
		return nil, err
	}

	snap, err := e.builder.Build(ctx, assets)
	if err != nil {
		return nil, err
	}
	snap.Version = e.version.Add(1)
	snap.RefreshedAt = e.now()
	return snap, nil
}

// refreshWithinBudget runs a best-effort refresh for a request. Concurrent
// requests share one in-flight refresh. The caller waits at most
// RefreshBudget or until ctx is done; the refresh itself keeps running.
func (e *Engine) refreshWithinBudget(ctx context.Context) {
	ch := e.inflight.DoChan("refresh", func() (interface{}, error) {
		return e.Refresh(context.WithoutCancel(ctx), false)
	})

	timer := time.NewTimer(e.config.RefreshBudget)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			e.logger.Debug().Err(res.Err).Msg("best-effort refresh failed")
		}
	case <-timer.C:
		e.logger.Debug().Dur("budget", e.config.RefreshBudget).Msg("best-effort refresh exceeded budget")
	case <-ctx.Done():
	}
}

func matrixNNZ(s *Snapshot) int {
	if s.Matrix == nil {
		return 0
	}
	return s.Matrix.NNZ()
}
