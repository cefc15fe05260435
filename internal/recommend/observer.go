// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import "time"

// Observer receives engine events, typically to record metrics.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	RecommendServed(result *Result, elapsed time.Duration)
	RefreshCompleted(outcome RefreshOutcome, elapsed time.Duration, snap *Snapshot)
}

type nopObserver struct{}

func (nopObserver) RecommendServed(*Result, time.Duration) {}

func (nopObserver) RefreshCompleted(RefreshOutcome, time.Duration, *Snapshot) {}
