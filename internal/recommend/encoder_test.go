// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import "testing"

func TestNewEncoder(t *testing.T) {
	tests := []struct {
		name    string
		mapping map[string]int
		wantErr bool
	}{
		{"empty", map[string]int{}, false},
		{"dense", map[string]int{"a": 0, "b": 1, "c": 2}, false},
		{"gap", map[string]int{"a": 0, "b": 2}, true},
		{"negative", map[string]int{"a": -1}, true},
		{"duplicate index", map[string]int{"a": 0, "b": 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncoder(tt.mapping)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncoder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && enc.Len() != len(tt.mapping) {
				t.Errorf("Len() = %d, want %d", enc.Len(), len(tt.mapping))
			}
		})
	}
}

func TestEncoderReverseRoundTrip(t *testing.T) {
	enc, err := NewEncoder(map[string]int{"x": 2, "y": 0, "z": 1})
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}

	rev := enc.Reverse()
	if len(rev) != enc.Len() {
		t.Fatalf("len(Reverse()) = %d, want %d", len(rev), enc.Len())
	}
	for id, idx := range enc.Mapping() {
		if rev[idx] != id {
			t.Errorf("Reverse()[%d] = %q, want %q", idx, rev[idx], id)
		}
		back, ok := enc.Index(rev[idx])
		if !ok || back != idx {
			t.Errorf("Index(%q) = %d, %v, want %d", rev[idx], back, ok, idx)
		}
	}

	ids := enc.IDs()
	want := []string{"y", "z", "x"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestEncoderFromIDs(t *testing.T) {
	enc := EncoderFromIDs([]string{"b", "a", "b", "c"})
	if enc.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", enc.Len())
	}
	if idx, _ := enc.Index("a"); idx != 1 {
		t.Errorf("Index(a) = %d, want 1", idx)
	}
	if _, ok := enc.Index("missing"); ok {
		t.Error("Index(missing) should not be found")
	}
	if id, ok := enc.ID(2); !ok || id != "c" {
		t.Errorf("ID(2) = %q, %v, want c", id, ok)
	}
	if _, ok := enc.ID(3); ok {
		t.Error("ID(3) should be out of range")
	}
}
