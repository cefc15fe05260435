// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package metrics

import (
	"time"

	"github.com/tomtom215/saifi/internal/recommend"
)

// EngineObserver records engine events into the package collectors.
type EngineObserver struct{}

var _ recommend.Observer = EngineObserver{}

// RecommendServed implements recommend.Observer.
func (EngineObserver) RecommendServed(result *recommend.Result, elapsed time.Duration) {
	reason := string(result.Reason)
	if reason == "" {
		reason = "none"
	}
	RecommendRequests.WithLabelValues(string(result.Source), reason).Inc()
	RecommendDuration.WithLabelValues(string(result.Source)).Observe(elapsed.Seconds())
	RecommendItems.Observe(float64(len(result.Items)))
}

// RefreshCompleted implements recommend.Observer. Gauges always describe
// the installed snapshot, which a failed refresh leaves unchanged.
func (EngineObserver) RefreshCompleted(outcome recommend.RefreshOutcome, elapsed time.Duration, snap *recommend.Snapshot) {
	RefreshTotal.WithLabelValues(outcome.String()).Inc()
	if outcome == recommend.RefreshRebuilt {
		RefreshDuration.Observe(elapsed.Seconds())
	}
	if snap == nil {
		return
	}
	recordSnapshot(snap)
}

func recordSnapshot(snap *recommend.Snapshot) {
	SnapshotVersion.Set(float64(snap.Version))
	if !snap.RefreshedAt.IsZero() {
		SnapshotLastRefresh.Set(float64(snap.RefreshedAt.Unix()))
	}

	nnz := 0
	if snap.Matrix != nil {
		nnz = snap.Matrix.NNZ()
	}
	SnapshotEntities.WithLabelValues("children").Set(float64(len(snap.Children)))
	SnapshotEntities.WithLabelValues("activities").Set(float64(len(snap.Activities)))
	SnapshotEntities.WithLabelValues("popular").Set(float64(len(snap.Popular)))
	SnapshotEntities.WithLabelValues("matrix_nnz").Set(float64(nnz))

	InteractionRows.WithLabelValues("accepted").Set(float64(snap.Stats.Accepted))
	InteractionRows.WithLabelValues("unknown_child").Set(float64(snap.Stats.UnknownChild))
	InteractionRows.WithLabelValues("unknown_activity").Set(float64(snap.Stats.UnknownActivity))
	InteractionRows.WithLabelValues("missing_rating").Set(float64(snap.Stats.MissingRating))
}
