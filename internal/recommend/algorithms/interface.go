// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package algorithms

import (
	"context"
	"sync"
	"time"
)

// ModelState tracks whether factors exist and which fit produced them.
// Fits hold the write lock; top-N queries share the read lock, so a model
// being restored or refit never serves half-written factors.
type ModelState struct {
	name      string
	trained   bool
	version   int
	trainedAt time.Time
	mu        sync.RWMutex
}

func newModelState(name string) ModelState {
	return ModelState{name: name}
}

// Name identifies the model in artifact metadata.
func (s *ModelState) Name() string {
	return s.name
}

// IsTrained reports whether factors are available.
func (s *ModelState) IsTrained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trained
}

// Version counts completed fits or restores on this instance.
func (s *ModelState) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// LastTrainedAt returns when factors were last produced.
func (s *ModelState) LastTrainedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trainedAt
}

// markTrained must be called with the fit lock held.
func (s *ModelState) markTrained() {
	s.trained = true
	s.version++
	s.trainedAt = time.Now()
}

func (s *ModelState) acquireTrainLock()   { s.mu.Lock() }
func (s *ModelState) releaseTrainLock()   { s.mu.Unlock() }
func (s *ModelState) acquirePredictLock() { s.mu.RLock() }
func (s *ModelState) releasePredictLock() { s.mu.RUnlock() }

func canceled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
