// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/saifi/internal/logging"
	"github.com/tomtom215/saifi/internal/metrics"
	"github.com/tomtom215/saifi/internal/recommend"
	"github.com/tomtom215/saifi/internal/validation"
)

// RecommendResponse is the body of GET /ai/recommend.
type RecommendResponse struct {
	ChildID         string                     `json:"child_id"`
	Source          recommend.Source           `json:"source"`
	Reason          recommend.FallbackReason   `json:"reason,omitempty"`
	SnapshotVersion uint64                     `json:"snapshot_version"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// RefreshResponse is the body of POST /ai/refresh.
type RefreshResponse struct {
	Outcome         string `json:"outcome"`
	SnapshotVersion uint64 `json:"snapshot_version"`
}

// Recommend handles GET /ai/recommend?child_id=&limit=
//
// limit defaults to the configured default and is clamped to the maximum.
// Unknown children are served from the fallback path, never rejected.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	query := r.URL.Query()

	req := validation.RecommendRequest{ChildID: query.Get("child_id")}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			rw.ValidationError("limit must be an integer", map[string]interface{}{"field": "limit", "value": raw})
			return
		}
		req.Limit = limit
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	result, err := h.engine.Recommend(ctx, req.ChildID, h.clampLimit(req.Limit))
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("child_id", req.ChildID).Msg("recommendation unavailable")
		if errors.Is(err, recommend.ErrAssetsUnavailable) {
			rw.ServiceUnavailable("Recommendation model is not loaded")
			return
		}
		rw.InternalError("Failed to generate recommendations")
		return
	}

	items := result.Items
	if items == nil {
		items = []recommend.Recommendation{}
	}
	rw.JSON(http.StatusOK, RecommendResponse{
		ChildID:         result.ChildID,
		Source:          result.Source,
		Reason:          result.Reason,
		SnapshotVersion: result.SnapshotVersion,
		Recommendations: items,
	})
}

func (h *Handler) clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return h.config.DefaultLimit
	case limit > h.config.MaxLimit:
		return h.config.MaxLimit
	default:
		return limit
	}
}

// Refresh handles POST /ai/refresh, forcing a snapshot rebuild.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.config.RequestTimeout)
	defer cancel()

	outcome, err := h.engine.TriggerRefresh(ctx)
	switch {
	case errors.Is(err, recommend.ErrRefreshThrottled):
		metrics.RecordRefreshTrigger("http", "throttled")
		w.Header().Set("Retry-After", retryAfterSeconds(h.config.RefreshInterval))
		rw.TooManyRequests("A refresh ran recently, retry later")
		return
	case errors.Is(err, recommend.ErrAssetsUnavailable):
		metrics.RecordRefreshTrigger("http", "failed")
		rw.ServiceUnavailable("Recommendation model is not loaded")
		return
	case err != nil:
		metrics.RecordRefreshTrigger("http", "failed")
		logging.Ctx(r.Context()).Warn().Err(err).Msg("forced refresh failed")
		rw.Error(http.StatusServiceUnavailable, ErrCodeRefreshFailed, "Refresh failed, previous snapshot kept")
		return
	}

	metrics.RecordRefreshTrigger("http", outcome.String())
	h.logger.Info().Str("outcome", outcome.String()).Msg("forced refresh via http")
	rw.Success(RefreshResponse{
		Outcome:         outcome.String(),
		SnapshotVersion: h.engine.Health().SnapshotVersion,
	})
}

// retryAfterSeconds renders d as whole seconds, rounded up, at least 1.
func retryAfterSeconds(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	return strconv.FormatInt(max(secs, 1), 10)
}
