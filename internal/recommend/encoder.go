// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import "fmt"

// Encoder is a dense bijection between external identifiers and matrix
// indices in [0, Len()). It is immutable after construction.
type Encoder struct {
	index map[string]int
	ids   []string
}

// ReverseMap resolves a matrix index back to an external identifier.
type ReverseMap map[int]string

// NewEncoder validates mapping and returns an Encoder. Every index in
// [0, len(mapping)) must be used exactly once.
func NewEncoder(mapping map[string]int) (*Encoder, error) {
	ids := make([]string, len(mapping))
	seen := make([]bool, len(mapping))

	for id, idx := range mapping {
		if idx < 0 || idx >= len(mapping) {
			return nil, fmt.Errorf("encoder index %d for %q out of range [0,%d)", idx, id, len(mapping))
		}
		if seen[idx] {
			return nil, fmt.Errorf("encoder index %d assigned more than once", idx)
		}
		seen[idx] = true
		ids[idx] = id
	}

	index := make(map[string]int, len(mapping))
	for id, idx := range mapping {
		index[id] = idx
	}
	return &Encoder{index: index, ids: ids}, nil
}

// EncoderFromIDs assigns indices in the order ids are given, skipping
// duplicates.
func EncoderFromIDs(ids []string) *Encoder {
	enc := &Encoder{index: make(map[string]int, len(ids)), ids: make([]string, 0, len(ids))}
	for _, id := range ids {
		if _, ok := enc.index[id]; ok {
			continue
		}
		enc.index[id] = len(enc.ids)
		enc.ids = append(enc.ids, id)
	}
	return enc
}

// Index returns the matrix index for id.
func (e *Encoder) Index(id string) (int, bool) {
	idx, ok := e.index[id]
	return idx, ok
}

// ID returns the identifier at idx.
func (e *Encoder) ID(idx int) (string, bool) {
	if idx < 0 || idx >= len(e.ids) {
		return "", false
	}
	return e.ids[idx], true
}

// Len returns the number of encoded identifiers.
func (e *Encoder) Len() int {
	return len(e.ids)
}

// IDs returns a copy of the identifiers in index order.
func (e *Encoder) IDs() []string {
	out := make([]string, len(e.ids))
	copy(out, e.ids)
	return out
}

// Mapping returns a copy of the id to index mapping.
func (e *Encoder) Mapping() map[string]int {
	out := make(map[string]int, len(e.index))
	for id, idx := range e.index {
		out[id] = idx
	}
	return out
}

// Reverse builds the index to id map.
func (e *Encoder) Reverse() ReverseMap {
	rev := make(ReverseMap, len(e.ids))
	for idx, id := range e.ids {
		rev[idx] = id
	}
	return rev
}

