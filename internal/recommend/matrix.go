// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import (
	"math"
	"sort"
)

// SparseRow is one row of a Matrix: column indices in ascending order and
// their values.
type SparseRow struct {
	Indices []int
	Values  []float64
}

// Len returns the number of stored entries.
func (r SparseRow) Len() int {
	return len(r.Indices)
}

// Matrix is an immutable compressed sparse row matrix.
type Matrix struct {
	rows    int
	cols    int
	indptr  []int
	indices []int
	values  []float64
}

// Entry is a single (row, col, value) triple.
type Entry struct {
	Row   int
	Col   int
	Value float64
}

// NewMatrix builds a rows x cols matrix from entries. Duplicate cells are
// summed. Entries outside the shape are ignored.
func NewMatrix(rows, cols int, entries []Entry) *Matrix {
	cells := make(map[[2]int]float64, len(entries))
	for _, e := range entries {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			continue
		}
		cells[[2]int{e.Row, e.Col}] += e.Value
	}

	keys := make([][2]int, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	m := &Matrix{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, len(keys)),
		values:  make([]float64, len(keys)),
	}
	for i, k := range keys {
		m.indptr[k[0]+1]++
		m.indices[i] = k[1]
		m.values[i] = cells[k]
	}
	for r := 0; r < rows; r++ {
		m.indptr[r+1] += m.indptr[r]
	}
	return m
}

// Shape returns the row and column counts.
func (m *Matrix) Shape() (rows, cols int) {
	return m.rows, m.cols
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	return len(m.values)
}

// Row returns row u. The returned slices alias the matrix and must not be
// modified. Out-of-range rows are empty.
func (m *Matrix) Row(u int) SparseRow {
	if u < 0 || u >= m.rows {
		return SparseRow{}
	}
	lo, hi := m.indptr[u], m.indptr[u+1]
	return SparseRow{Indices: m.indices[lo:hi], Values: m.values[lo:hi]}
}

// At returns the value at (row, col), or 0.
func (m *Matrix) At(row, col int) float64 {
	r := m.Row(row)
	i := sort.SearchInts(r.Indices, col)
	if i < len(r.Indices) && r.Indices[i] == col {
		return r.Values[i]
	}
	return 0
}

// Transpose returns the cols x rows transpose.
func (m *Matrix) Transpose() *Matrix {
	entries := make([]Entry, 0, m.NNZ())
	for r := 0; r < m.rows; r++ {
		row := m.Row(r)
		for i, c := range row.Indices {
			entries = append(entries, Entry{Row: c, Col: r, Value: row.Values[i]})
		}
	}
	return NewMatrix(m.cols, m.rows, entries)
}

// MatrixStats counts interaction rows by outcome.
type MatrixStats struct {
	Accepted        int `json:"accepted"`
	UnknownChild    int `json:"unknown_child"`
	UnknownActivity int `json:"unknown_activity"`
	MissingRating   int `json:"missing_rating"`
}

// Rejected returns the number of rows left out of the matrix.
func (s MatrixStats) Rejected() int {
	return s.UnknownChild + s.UnknownActivity + s.MissingRating
}

// BuildMatrix converts interaction records into a confidence-weighted
// matrix of shape (children.Len(), activities.Len()). Each accepted cell is
// 1 + alpha*rating; repeated pairs are summed. Rows whose child or activity is
// not encoded, or whose rating is missing or not finite, are dropped.
//
// It returns nil when no row was accepted.
func BuildMatrix(records []InteractionRecord, children, activities *Encoder, alpha float64) (*Matrix, MatrixStats) {
	var stats MatrixStats
	entries := make([]Entry, 0, len(records))

	for _, rec := range records {
		u, ok := children.Index(rec.ChildID)
		if !ok {
			stats.UnknownChild++
			continue
		}
		i, ok := activities.Index(rec.ActivityID)
		if !ok {
			stats.UnknownActivity++
			continue
		}
		if rec.Rating == nil || math.IsNaN(*rec.Rating) || math.IsInf(*rec.Rating, 0) {
			stats.MissingRating++
			continue
		}
		rating := *rec.Rating
		entries = append(entries, Entry{Row: u, Col: i, Value: 1 + alpha*rating})
		stats.Accepted++
	}

	if len(entries) == 0 {
		return nil, stats
	}
	return NewMatrix(children.Len(), activities.Len(), entries), stats
}
