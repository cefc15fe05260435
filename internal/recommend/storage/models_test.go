// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package storage

import (
	"bytes"
	"encoding/gob"
	"errors"
	"testing"
	"time"
)

func testState() *ALSModelState {
	return &ALSModelState{
		UserFactors: [][]float64{
			{0.1, 0.2},
			{0.3, 0.4},
		},
		ItemFactors: [][]float64{
			{0.5, 0.6},
			{0.7, 0.8},
			{0.9, 1.0},
		},
		Regularization: 0.01,
		Alpha:          40,
	}
}

func TestEncodeDecodeModel(t *testing.T) {
	var buf bytes.Buffer
	meta := ModelMetadata{
		Name:             "als",
		Version:          3,
		TrainedAt:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		InteractionCount: 1000,
	}

	saved, err := EncodeModel(&buf, testState(), meta)
	if err != nil {
		t.Fatalf("EncodeModel() error = %v", err)
	}
	if saved.Checksum == "" {
		t.Error("Checksum should not be empty")
	}
	if saved.SizeBytes == 0 {
		t.Error("SizeBytes should not be zero")
	}
	if saved.UserCount != 2 || saved.ItemCount != 3 {
		t.Errorf("counts = %d/%d, want 2/3", saved.UserCount, saved.ItemCount)
	}

	state, loadedMeta, err := DecodeModel(&buf)
	if err != nil {
		t.Fatalf("DecodeModel() error = %v", err)
	}

	if loadedMeta.Name != "als" {
		t.Errorf("Name = %s, want als", loadedMeta.Name)
	}
	if loadedMeta.Version != 3 {
		t.Errorf("Version = %d, want 3", loadedMeta.Version)
	}
	if loadedMeta.InteractionCount != 1000 {
		t.Errorf("InteractionCount = %d, want 1000", loadedMeta.InteractionCount)
	}
	if loadedMeta.Checksum != saved.Checksum {
		t.Errorf("Checksum = %s, want %s", loadedMeta.Checksum, saved.Checksum)
	}

	if len(state.ItemFactors) != 3 || state.ItemFactors[2][1] != 1.0 {
		t.Errorf("ItemFactors = %v", state.ItemFactors)
	}
	if state.Regularization != 0.01 {
		t.Errorf("Regularization = %f, want 0.01", state.Regularization)
	}
}

func TestDecodeModel_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	if _, err := EncodeModel(&buf, testState(), ModelMetadata{Name: "als"}); err != nil {
		t.Fatalf("EncodeModel() error = %v", err)
	}

	// Re-encode the envelope with a tampered checksum.
	var sf storedFile
	if err := gob.NewDecoder(&buf).Decode(&sf); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	sf.Metadata.Checksum = "deadbeef"
	var tampered bytes.Buffer
	if err := gob.NewEncoder(&tampered).Encode(sf); err != nil {
		t.Fatalf("encode envelope: %v", err)
	}

	_, _, err := DecodeModel(&tampered)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("DecodeModel() error = %v, want ErrChecksumMismatch", err)
	}
}

func TestDecodeModel_Garbage(t *testing.T) {
	_, _, err := DecodeModel(bytes.NewReader([]byte("not a model")))
	if !errors.Is(err, ErrMalformedArtifact) {
		t.Errorf("DecodeModel() error = %v, want ErrMalformedArtifact", err)
	}
}
