// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

func ptr[T any](v T) *T {
	return &v
}

// mockDataSource is a DataSource with canned rows and call counters.
type mockDataSource struct {
	mu           sync.Mutex
	children     []ChildProfile
	activities   []ActivityProfile
	interactions []InteractionRecord

	childrenErr     error
	activitiesErr   error
	interactionsErr error

	// delay is applied to every Activities call.
	delay time.Duration

	childrenCalls     atomic.Int32
	activitiesCalls   atomic.Int32
	interactionsCalls atomic.Int32
}

func (m *mockDataSource) Children(ctx context.Context) ([]ChildProfile, error) {
	m.childrenCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.childrenErr != nil {
		return nil, m.childrenErr
	}
	return append([]ChildProfile(nil), m.children...), nil
}

func (m *mockDataSource) Activities(ctx context.Context) ([]ActivityProfile, error) {
	m.activitiesCalls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activitiesErr != nil {
		return nil, m.activitiesErr
	}
	return append([]ActivityProfile(nil), m.activities...), nil
}

func (m *mockDataSource) Interactions(ctx context.Context) ([]InteractionRecord, error) {
	m.interactionsCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.interactionsErr != nil {
		return nil, m.interactionsErr
	}
	return append([]InteractionRecord(nil), m.interactions...), nil
}

func (m *mockDataSource) setInteractions(rows []InteractionRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = rows
}

func (m *mockDataSource) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activitiesErr = err
}

// mockModel scores item i as scores[i] for every user.
type mockModel struct {
	scores []float64
	err    error
	panics bool
	calls  atomic.Int32
}

func (m *mockModel) Recommend(userIndex int, userRow SparseRow, topN int) ([]Candidate, error) {
	m.calls.Add(1)
	if m.panics {
		panic("index out of range")
	}
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Candidate, 0, len(m.scores))
	for i, s := range m.scores {
		out = append(out, Candidate{ItemIndex: i, Score: s})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Score > out[j-1].Score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

func (m *mockModel) NumItems() int {
	return len(m.scores)
}

// staticArtifacts returns fixed artifacts or an error.
type staticArtifacts struct {
	artifacts *Artifacts
	err       error
	calls     atomic.Int32
}

func (s *staticArtifacts) LoadArtifacts(ctx context.Context) (*Artifacts, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.artifacts, nil
}

var errDatabaseDown = errors.New("database unavailable")

// fixture is a small catalog: three children known to the model, five
// activities around Riyadh, and one child ("c-new") unknown to the model.
func fixture() (*staticArtifacts, *mockDataSource, *mockModel) {
	model := &mockModel{scores: []float64{0.9, 0.8, 0.7, 0.6, 0.5}}
	art := &staticArtifacts{artifacts: &Artifacts{
		Model:           model,
		ChildEncoder:    EncoderFromIDs([]string{"c1", "c2", "c3"}),
		ActivityEncoder: EncoderFromIDs([]string{"a1", "a2", "a3", "a4", "a5"}),
	}}

	data := &mockDataSource{
		children: []ChildProfile{
			{ID: "c1", Age: ptr(8), Lat: ptr(24.7136), Lng: ptr(46.6753)},
			{ID: "c2", Age: ptr(12), Lat: ptr(21.4858), Lng: ptr(39.1925)},
			{ID: "c3"},
			{ID: "c-new", Age: ptr(6), Lat: ptr(24.7136), Lng: ptr(46.6753)},
		},
		activities: []ActivityProfile{
			{ID: "a1", Name: "Swimming", Category: "sport", Price: ptr(100.0), DurationHours: ptr(2), MinAge: ptr(5), MaxAge: ptr(10), Lat: ptr(24.80), Lng: ptr(46.70)},
			{ID: "a2", Name: "Robotics", Category: "stem", Price: ptr(250.0), DurationHours: ptr(3), MinAge: ptr(9), MaxAge: ptr(14), Lat: ptr(24.72), Lng: ptr(46.68)},
			{ID: "a3", Name: "Painting", Category: "art", MinAge: ptr(4), MaxAge: ptr(12), Lat: ptr(21.50), Lng: ptr(39.20)},
			{ID: "a4", Name: "Chess", Category: "mind", Lat: ptr(24.60), Lng: ptr(46.60)},
			{ID: "a5", Name: "Football", Category: "sport", MinAge: ptr(6), MaxAge: ptr(16)},
		},
	}
	return art, data, model
}

func threeInteractions() []InteractionRecord {
	return []InteractionRecord{
		{ChildID: "c1", ActivityID: "a1", Rating: ptr(5.0)},
		{ChildID: "c1", ActivityID: "a2", Rating: ptr(4.0)},
		{ChildID: "c2", ActivityID: "a3", Rating: ptr(3.0)},
	}
}
