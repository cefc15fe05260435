// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/saifi/internal/metrics"
	"github.com/tomtom215/saifi/internal/recommend"
)

type fakeEngine struct {
	mu         sync.Mutex
	result     *recommend.Result
	err        error
	refreshOut recommend.RefreshOutcome
	refreshErr error
	health     recommend.Health

	gotChildID string
	gotLimit   int
	refreshes  int
}

func (f *fakeEngine) Recommend(_ context.Context, childID string, limit int) (*recommend.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotChildID, f.gotLimit = childID, limit
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &recommend.Result{ChildID: childID, Source: recommend.SourceFallback, Reason: recommend.ReasonUnknownChild}, nil
}

func (f *fakeEngine) TriggerRefresh(context.Context) (recommend.RefreshOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshOut, f.refreshErr
}

func (f *fakeEngine) Health() recommend.Health {
	return f.health
}

type fakeStore struct {
	pingErr error
	state   string
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }
func (s *fakeStore) BreakerState() string       { return s.state }

func newTestRouter(engine *fakeEngine, store DatastoreProbe) http.Handler {
	h := NewHandler(engine, store, HandlerConfig{DefaultLimit: 10, MaxLimit: 50}, zerolog.Nop())
	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	return NewRouter(h, mw)
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *APIError {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v\n%s", err, rec.Body.String())
	}
	if resp.Success || resp.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	return resp.Error
}

func TestRecommend_Success(t *testing.T) {
	engine := &fakeEngine{result: &recommend.Result{
		ChildID:         "c1",
		Source:          recommend.SourceALS,
		SnapshotVersion: 3,
		Items: []recommend.Recommendation{
			{ActivityID: "a1", ActivityName: "Swimming", Score: 0.9, DistanceKm: 1.25, MaxAge: 99, Source: recommend.SourceALS},
		},
	}}
	rec := doRequest(t, newTestRouter(engine, nil), http.MethodGet, "/ai/recommend?child_id=c1&limit=5")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if engine.gotChildID != "c1" || engine.gotLimit != 5 {
		t.Errorf("engine called with (%q, %d), want (c1, 5)", engine.gotChildID, engine.gotLimit)
	}

	var body RecommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ChildID != "c1" || body.Source != recommend.SourceALS || body.SnapshotVersion != 3 {
		t.Errorf("body = %+v", body)
	}
	if len(body.Recommendations) != 1 || body.Recommendations[0].ActivityID != "a1" {
		t.Errorf("recommendations = %+v", body.Recommendations)
	}
	if strings.Contains(rec.Body.String(), `"reason"`) {
		t.Errorf("warm result should omit reason: %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on /ai routes")
	}
}

func TestRecommend_UnknownChildServesFallback(t *testing.T) {
	engine := &fakeEngine{}
	rec := doRequest(t, newTestRouter(engine, nil), http.MethodGet, "/ai/recommend?child_id=ghost")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"source":"fallback"`) || !strings.Contains(body, `"reason":"unknown_child"`) {
		t.Errorf("body = %s", body)
	}
	if !strings.Contains(body, `"recommendations":[]`) {
		t.Errorf("empty result should encode as [], got %s", body)
	}
}

func TestRecommend_LimitHandling(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"child_id=c1", 10},
		{"child_id=c1&limit=0", 10},
		{"child_id=c1&limit=7", 7},
		{"child_id=c1&limit=500", 50},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			engine := &fakeEngine{}
			rec := doRequest(t, newTestRouter(engine, nil), http.MethodGet, "/ai/recommend?"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if engine.gotLimit != tt.want {
				t.Errorf("limit = %d, want %d", engine.gotLimit, tt.want)
			}
		})
	}
}

func TestRecommend_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"missing child id", "", "child_id is required"},
		{"child id with space", "child_id=a%20b", "child_id must be"},
		{"non-integer limit", "child_id=c1&limit=ten", "limit must be an integer"},
		{"negative limit", "child_id=c1&limit=-2", "limit must be greater than or equal to 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			rec := doRequest(t, newTestRouter(engine, nil), http.MethodGet, "/ai/recommend?"+tt.query)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			apiErr := decodeError(t, rec)
			if apiErr.Code != ErrCodeValidationFailed {
				t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeValidationFailed)
			}
			if !strings.Contains(apiErr.Message, tt.message) {
				t.Errorf("message = %q, want to contain %q", apiErr.Message, tt.message)
			}
			if apiErr.RequestID == "" {
				t.Error("error should carry the request id")
			}
			if engine.gotChildID != "" {
				t.Error("engine should not be called for invalid requests")
			}
		})
	}
}

func TestRecommend_EngineErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"assets unavailable", fmt.Errorf("%w: open model", recommend.ErrAssetsUnavailable), http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, newTestRouter(&fakeEngine{err: tt.err}, nil), http.MethodGet, "/ai/recommend?child_id=c1")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decodeError(t, rec).Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name    string
		outcome recommend.RefreshOutcome
		err     error
		status  int
		result  string
	}{
		{"rebuilt", recommend.RefreshRebuilt, nil, http.StatusOK, "rebuilt"},
		{"throttled", recommend.RefreshSkipped, recommend.ErrRefreshThrottled, http.StatusTooManyRequests, "throttled"},
		{"assets unavailable", recommend.RefreshFailed, fmt.Errorf("%w: x", recommend.ErrAssetsUnavailable), http.StatusServiceUnavailable, "failed"},
		{"store failure", recommend.RefreshFailed, errors.New("connection refused"), http.StatusServiceUnavailable, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.RefreshTriggers.WithLabelValues("http", tt.result)
			before := testutil.ToFloat64(counter)

			engine := &fakeEngine{refreshOut: tt.outcome, refreshErr: tt.err, health: recommend.Health{SnapshotVersion: 9}}
			rec := doRequest(t, newTestRouter(engine, nil), http.MethodPost, "/ai/refresh")

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if engine.refreshes != 1 {
				t.Errorf("TriggerRefresh calls = %d, want 1", engine.refreshes)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("refresh trigger metric delta = %v, want 1", got)
			}
			if tt.err == nil && !strings.Contains(rec.Body.String(), `"snapshot_version":9`) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}

func TestRefresh_RetryAfterFollowsInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     string
	}{
		{"default", 0, "10"},
		{"configured", 45 * time.Second, "45"},
		{"rounds up", 1500 * time.Millisecond, "2"},
		{"sub second", 200 * time.Millisecond, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{refreshOut: recommend.RefreshSkipped, refreshErr: recommend.ErrRefreshThrottled}
			h := NewHandler(engine, nil, HandlerConfig{RefreshInterval: tt.interval}, zerolog.Nop())
			router := NewRouter(h, NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true}))

			rec := doRequest(t, router, http.MethodPost, "/ai/refresh")
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("status = %d, want 429", rec.Code)
			}
			if got := rec.Header().Get("Retry-After"); got != tt.want {
				t.Errorf("Retry-After = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRefresh_GetNotAllowed(t *testing.T) {
	rec := doRequest(t, newTestRouter(&fakeEngine{}, nil), http.MethodGet, "/ai/refresh")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	refreshed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := &fakeEngine{health: recommend.Health{
		ModelLoaded:     true,
		MatrixLoaded:    true,
		SnapshotVersion: 2,
		LastRefresh:     refreshed,
		Children:        4,
		Activities:      6,
		RejectedRows:    1,
	}}

	tests := []struct {
		name      string
		store     DatastoreProbe
		wantStore string
	}{
		{"without store", nil, ""},
		{"healthy store", &fakeStore{state: "closed"}, `"datastore":{"reachable":true,"breaker":"closed"}`},
		{"unreachable store", &fakeStore{state: "open", pingErr: errors.New("dial tcp: refused")}, `"reachable":false,"breaker":"open","error":"dial tcp: refused"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, newTestRouter(engine, tt.store), http.MethodGet, "/ai/health")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := rec.Body.String()
			for _, want := range []string{`"status":"ok"`, `"model_loaded":true`, `"matrix_loaded":true`, `"snapshot_version":2`, `"rejected_rows":1`} {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %s: %s", want, body)
				}
			}
			if tt.wantStore == "" && strings.Contains(body, "datastore") {
				t.Errorf("body should omit datastore: %s", body)
			}
			if tt.wantStore != "" && !strings.Contains(body, tt.wantStore) {
				t.Errorf("body missing %s: %s", tt.wantStore, body)
			}
		})
	}
}

func TestHealth_ModelMissingStillAnswers(t *testing.T) {
	engine := &fakeEngine{health: recommend.Health{AssetError: "recommendation assets unavailable: no such file"}}
	rec := doRequest(t, newTestRouter(engine, nil), http.MethodGet, "/ai/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":"degraded"`) || !strings.Contains(body, `"model_loaded":false`) {
		t.Errorf("body = %s", body)
	}
}

func TestProbes(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		loaded bool
		status int
	}{
		{"live without model", "/healthz", false, http.StatusOK},
		{"ready without model", "/readyz", false, http.StatusServiceUnavailable},
		{"ready with model", "/readyz", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{health: recommend.Health{ModelLoaded: tt.loaded}}
			rec := doRequest(t, newTestRouter(engine, nil), http.MethodGet, tt.path)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doRequest(t, newTestRouter(&fakeEngine{}, nil), http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_active_requests") {
		t.Error("expected application metrics in exposition")
	}
}

func TestNotFound(t *testing.T) {
	rec := doRequest(t, newTestRouter(&fakeEngine{}, nil), http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != ErrCodeNotFound {
		t.Errorf("code = %q, want %q", got, ErrCodeNotFound)
	}
}

func TestNewHandler_Defaults(t *testing.T) {
	h := NewHandler(&fakeEngine{}, nil, HandlerConfig{MaxLimit: 3}, zerolog.Nop())
	if h.config.DefaultLimit != 10 {
		t.Errorf("DefaultLimit = %d, want 10", h.config.DefaultLimit)
	}
	if h.config.MaxLimit != 10 {
		t.Errorf("MaxLimit = %d, want raised to 10", h.config.MaxLimit)
	}
	if h.config.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", h.config.RequestTimeout)
	}
}
