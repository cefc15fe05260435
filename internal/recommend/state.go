// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import "time"

// Snapshot is the immutable unit of serving state. A refresh builds a new
// Snapshot and installs it with a single pointer swap; no field is ever
// modified after installation.
type Snapshot struct {
	Version uint64
	Assets  *Assets

	Children      map[string]*ChildProfile
	Activities    map[string]*ActivityProfile
	ActivityOrder []string
	Popular       []string

	// Matrix is nil when no interaction row could be encoded.
	Matrix *Matrix
	Stats  MatrixStats

	RefreshedAt time.Time
}

// HasMatrix reports whether the snapshot carries interaction signal.
func (s *Snapshot) HasMatrix() bool {
	return s != nil && s.Matrix != nil
}

// emptySnapshot is installed before the first refresh so readers never see
// a nil pointer.
func emptySnapshot() *Snapshot {
	return &Snapshot{
		Children:   map[string]*ChildProfile{},
		Activities: map[string]*ActivityProfile{},
	}
}
