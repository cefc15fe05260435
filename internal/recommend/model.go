// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

// Candidate is a model-scored item index.
type Candidate struct {
	ItemIndex int
	Score     float64
}

// Model ranks items for a user row of the interaction matrix.
//
// userRow holds the child's current confidence-weighted interactions and may
// be empty. Implementations must not retain or mutate it. Results are
// ordered by descending score and contain at most topN entries.
type Model interface {
	Recommend(userIndex int, userRow SparseRow, topN int) ([]Candidate, error)
}

// ItemCounter is implemented by models that know their item dimension.
// LoadAssets rejects a model whose item count disagrees with the activity
// encoder.
type ItemCounter interface {
	NumItems() int
}
