// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import (
	"errors"
	"time"
)

var (
	// ErrAssetsUnavailable is returned when the model or encoders could not be
	// loaded. It is fatal to the serving process.
	ErrAssetsUnavailable = errors.New("recommendation assets unavailable")

	// ErrRefreshThrottled is returned by TriggerRefresh when forced refreshes
	// arrive faster than the configured interval.
	ErrRefreshThrottled = errors.New("refresh throttled")

	// ErrUnknownIndex is returned when a model emits an item index that the
	// activity encoder cannot resolve.
	ErrUnknownIndex = errors.New("unknown item index")
)

// Source identifies which path produced a recommendation.
type Source string

const (
	// SourceALS marks results ranked by the collaborative filtering model.
	SourceALS Source = "als"
	// SourceFallback marks results ranked by popularity and distance.
	SourceFallback Source = "fallback"
)

// FallbackReason records why a request was served from the fallback path.
type FallbackReason string

const (
	// ReasonNone is set on warm-path results.
	ReasonNone FallbackReason = ""
	// ReasonUnknownChild means the child has no row in the model.
	ReasonUnknownChild FallbackReason = "unknown_child"
	// ReasonNoMatrix means no interaction matrix could be built.
	ReasonNoMatrix FallbackReason = "no_matrix"
	// ReasonScoringFailed means the model raised an error while scoring.
	ReasonScoringFailed FallbackReason = "scoring_failed"
)

// ChildProfile is a child row as read from the data store.
// Optional columns are nil when NULL.
type ChildProfile struct {
	ID        string
	Age       *int
	Gender    string
	Interests []string
	Lat       *float64
	Lng       *float64
}

// Location returns the child's coordinate, or nil if either part is missing.
func (c *ChildProfile) Location() *Coordinate {
	return coordinateOf(c.Lat, c.Lng)
}

// ActivityProfile is an activity row joined with its provider's location.
type ActivityProfile struct {
	ID            string
	Name          string
	Category      string
	Price         *float64
	DurationHours *int
	MinAge        *int
	MaxAge        *int
	Lat           *float64
	Lng           *float64
}

// Location returns the provider coordinate, or nil if either part is missing.
func (a *ActivityProfile) Location() *Coordinate {
	return coordinateOf(a.Lat, a.Lng)
}

// InteractionRecord is one (child, activity) signal. Rating is nil when the
// booking has no feedback.
type InteractionRecord struct {
	ChildID    string
	ActivityID string
	Rating     *float64
}

// Recommendation is a single ranked activity returned to callers.
type Recommendation struct {
	ActivityID    string  `json:"activity_id"`
	ActivityName  string  `json:"activity_name"`
	Score         float64 `json:"score"`
	DistanceKm    float64 `json:"distance_km"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	DurationHours int     `json:"duration_hours"`
	MinAge        int     `json:"min_age"`
	MaxAge        int     `json:"max_age"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Source        Source  `json:"source"`
}

// Result is the outcome of a single Recommend call.
type Result struct {
	ChildID         string
	Items           []Recommendation
	Source          Source
	Reason          FallbackReason
	SnapshotVersion uint64
}

// Degraded reports whether the result came from the fallback path for a
// reason other than the child being unknown.
func (r *Result) Degraded() bool {
	return r.Source == SourceFallback && r.Reason != ReasonUnknownChild
}

// Health is a side-effect free view of engine readiness.
type Health struct {
	ModelLoaded       bool      `json:"model_loaded"`
	MatrixLoaded      bool      `json:"matrix_loaded"`
	AssetError        string    `json:"asset_error,omitempty"`
	SnapshotVersion   uint64    `json:"snapshot_version"`
	LastRefresh       time.Time `json:"last_refresh,omitempty"`
	Children          int       `json:"children"`
	Activities        int       `json:"activities"`
	PopularActivities int       `json:"popular_activities"`
	MatrixNNZ         int       `json:"matrix_nnz"`
	RejectedRows      int       `json:"rejected_rows"`
}

// Status returns "ok" when the model is loaded and "degraded" otherwise.
func (h *Health) Status() string {
	if h.ModelLoaded {
		return "ok"
	}
	return "degraded"
}
