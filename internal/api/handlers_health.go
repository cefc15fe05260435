// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/saifi/internal/recommend"
)

const datastorePingTimeout = 2 * time.Second

// DatastoreHealth is the store section of the health body.
type DatastoreHealth struct {
	Reachable bool   `json:"reachable"`
	Breaker   string `json:"breaker"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /ai/health.
type HealthResponse struct {
	Status string `json:"status"`
	recommend.Health
	Datastore *DatastoreHealth `json:"datastore,omitempty"`
}

// Health handles GET /ai/health. It always answers 200; readiness is in
// the model_loaded and matrix_loaded fields.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.engine.Health()
	resp := HealthResponse{
		Status:    health.Status(),
		Health:    health,
		Datastore: h.datastoreHealth(r.Context()),
	}
	NewResponseWriter(w, r).JSON(http.StatusOK, resp)
}

// Live handles GET /healthz.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// Ready handles GET /readyz: 503 until the model and encoders are loaded.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	health := h.engine.Health()
	if !health.ModelLoaded {
		NewResponseWriter(w, r).ServiceUnavailable("Recommendation model is not loaded")
		return
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":        "ready",
		"matrix_loaded": health.MatrixLoaded,
	})
}

func (h *Handler) datastoreHealth(ctx context.Context) *DatastoreHealth {
	if h.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, datastorePingTimeout)
	defer cancel()

	ds := &DatastoreHealth{Breaker: h.store.BreakerState(), Reachable: true}
	if err := h.store.Ping(ctx); err != nil {
		ds.Reachable = false
		ds.Error = err.Error()
	}
	return ds
}
