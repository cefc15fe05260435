// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		input   string
		want    Location
		wantErr bool
	}{
		{"models/saifi_model.gob.gz", Location{Path: "models/saifi_model.gob.gz"}, false},
		{"/var/lib/saifi/../saifi/model.gob.gz", Location{Path: "/var/lib/saifi/model.gob.gz"}, false},
		{"file:///data/child_encoder.json", Location{Path: "/data/child_encoder.json"}, false},
		{"gs://saifi-models/prod/model.gob.gz", Location{Bucket: "saifi-models", Path: "prod/model.gob.gz"}, false},
		{"gs://bucket-only", Location{}, true},
		{"gs:///object", Location{}, true},
		{"s3://bucket/key", Location{}, true},
		{"file://", Location{}, true},
		{"   ", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocation(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLocation() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLocation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLocationString(t *testing.T) {
	if got := (Location{Bucket: "b", Path: "o/x"}).String(); got != "gs://b/o/x" {
		t.Errorf("String() = %q", got)
	}
	if got := (Location{Path: "/tmp/x"}).String(); got != "/tmp/x" {
		t.Errorf("String() = %q", got)
	}
}

func TestOpener_LocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	o := NewOpener()
	defer func() { _ = o.Close() }()

	path := filepath.Join(t.TempDir(), "nested", "artifact.json")

	w, err := o.Create(ctx, path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := io.WriteString(w, `{"a":0}`); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Target must not exist until Close.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("target visible before Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	r, err := o.Open(ctx, "file://"+path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"a":0}` {
		t.Errorf("data = %q", data)
	}
}

func TestOpener_AbortLeavesTargetUntouched(t *testing.T) {
	ctx := context.Background()
	o := NewOpener()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gob.gz")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := o.Create(ctx, path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, _ = io.WriteString(w, "partial")
	w.(interface{ Abort() }).Abort()

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "old" {
		t.Errorf("target = %q, %v, want old", data, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want temp file removed", len(entries))
	}
}

func TestOpener_OpenMissing(t *testing.T) {
	o := NewOpener()
	_, err := o.Open(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("Open() error = %v, want ErrArtifactNotFound", err)
	}
}
