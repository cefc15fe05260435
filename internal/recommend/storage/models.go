// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrArtifactNotFound is returned when an artifact location does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrMalformedArtifact is returned when an artifact cannot be decoded.
	ErrMalformedArtifact = errors.New("malformed artifact")

	// ErrChecksumMismatch is returned when a model's contents do not match its
	// recorded checksum. It wraps ErrMalformedArtifact.
	ErrChecksumMismatch = fmt.Errorf("%w: model checksum mismatch", ErrMalformedArtifact)
)

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the algorithm name ("als").
	Name string `json:"name"`

	// Version is the model version (monotonically increasing).
	Version int `json:"version"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// InteractionCount is the number of matrix cells used for training.
	InteractionCount int `json:"interaction_count"`

	// ItemCount is the number of activities.
	ItemCount int `json:"item_count"`

	// UserCount is the number of children.
	UserCount int `json:"user_count"`

	// Checksum is the SHA-256 checksum of the model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// ALSModelState is the serializable state of an ALS model.
type ALSModelState struct {
	// UserFactors is numChildren x factors.
	UserFactors [][]float64

	// ItemFactors is numActivities x factors.
	ItemFactors [][]float64

	// Config values needed to fold in new children
	Regularization float64
	Alpha          float64
}

// storedFile is the on-disk format for model files.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// EncodeModel writes state and meta to w. Checksum, SizeBytes and SavedAt
// are filled in and the completed metadata is returned.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func EncodeModel(w io.Writer, state *ALSModelState, meta ModelMetadata) (ModelMetadata, error) {
	// Serialize model data
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return meta, fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return meta, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return meta, fmt.Errorf("finalize compression: %w", err)
	}

	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()
	meta.UserCount = len(state.UserFactors)
	meta.ItemCount = len(state.ItemFactors)

	// Write as single gob-encoded struct to avoid buffering issues
	sf := storedFile{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}
	if err := gob.NewEncoder(w).Encode(sf); err != nil {
		return meta, fmt.Errorf("write model file: %w", err)
	}
	return meta, nil
}

// DecodeModel reads a model written by EncodeModel and verifies its
// checksum.
func DecodeModel(r io.Reader) (*ALSModelState, *ModelMetadata, error) {
	var sf storedFile
	if err := gob.NewDecoder(r).Decode(&sf); err != nil {
		return nil, nil, fmt.Errorf("%w: read model file: %w", ErrMalformedArtifact, err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: decompress model: %w", ErrMalformedArtifact, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read decompressed data: %w", ErrMalformedArtifact, err)
	}

	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, sf.Metadata.Checksum, checksum)
	}

	var state ALSModelState
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&state); err != nil {
		return nil, nil, fmt.Errorf("%w: decode model: %w", ErrMalformedArtifact, err)
	}
	return &state, &sf.Metadata, nil
}
