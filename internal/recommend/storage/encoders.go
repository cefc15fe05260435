// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package storage

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/saifi/internal/recommend"
)

// EncodeEncoder writes enc as a JSON id to index object.
func EncodeEncoder(w io.Writer, enc *recommend.Encoder) error {
	if err := json.NewEncoder(w).Encode(enc.Mapping()); err != nil {
		return fmt.Errorf("encode encoder: %w", err)
	}
	return nil
}

// DecodeEncoder reads a JSON id to index object and validates it.
func DecodeEncoder(r io.Reader) (*recommend.Encoder, error) {
	var mapping map[string]int
	if err := json.NewDecoder(r).Decode(&mapping); err != nil {
		return nil, fmt.Errorf("%w: decode encoder: %w", ErrMalformedArtifact, err)
	}
	if mapping == nil {
		return nil, fmt.Errorf("%w: empty encoder document", ErrMalformedArtifact)
	}
	enc, err := recommend.NewEncoder(mapping)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid encoder: %w", ErrMalformedArtifact, err)
	}
	return enc, nil
}
