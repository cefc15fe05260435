// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Location is a parsed artifact location.
type Location struct {
	// Bucket is set for gs:// locations.
	Bucket string
	// Path is the object name for gs:// or the filesystem path otherwise.
	Path string
}

// IsGCS reports whether the location is on Cloud Storage.
func (l Location) IsGCS() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsGCS() {
		return "gs://" + l.Bucket + "/" + l.Path
	}
	return l.Path
}

// ParseLocation accepts plain paths, file:// URLs and gs://bucket/object.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Location{}, errors.New("empty artifact location")
	case strings.HasPrefix(raw, "gs://"):
		rest := strings.TrimPrefix(raw, "gs://")
		bucket, object, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || object == "" {
			return Location{}, fmt.Errorf("invalid gs location %q: want gs://bucket/object", raw)
		}
		return Location{Bucket: bucket, Path: object}, nil
	case strings.HasPrefix(raw, "file://"):
		path := strings.TrimPrefix(raw, "file://")
		if path == "" {
			return Location{}, fmt.Errorf("invalid file location %q", raw)
		}
		return Location{Path: filepath.Clean(path)}, nil
	case strings.Contains(raw, "://"):
		return Location{}, fmt.Errorf("unsupported artifact location %q", raw)
	default:
		return Location{Path: filepath.Clean(raw)}, nil
	}
}

// Opener reads and writes artifacts on the local filesystem or Cloud
// Storage. It is safe for concurrent use.
type Opener struct {
	mu        sync.Mutex
	client    *gcs.Client
	newClient func(ctx context.Context) (*gcs.Client, error)
}

// NewOpener creates an opener. The Cloud Storage client is created lazily.
func NewOpener() *Opener {
	return &Opener{newClient: defaultGCSClient}
}

func defaultGCSClient(ctx context.Context) (*gcs.Client, error) {
	if os.Getenv("STORAGE_EMULATOR_HOST") != "" {
		return gcs.NewClient(ctx, option.WithoutAuthentication())
	}
	return gcs.NewClient(ctx, option.WithScopes(gcs.ScopeReadWrite))
}

func (o *Opener) gcsClient(ctx context.Context) (*gcs.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client != nil {
		return o.client, nil
	}
	c, err := o.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	o.client = c
	return c, nil
}

// Open returns a reader for the artifact at raw.
func (o *Opener) Open(ctx context.Context, raw string) (io.ReadCloser, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	if !loc.IsGCS() {
		f, err := os.Open(loc.Path) //nolint:gosec // artifact paths come from operator configuration
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, loc)
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc, err)
		}
		return f, nil
	}

	client, err := o.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	r, err := client.Bucket(loc.Bucket).Object(loc.Path).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, loc)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", loc, err)
	}
	return r, nil
}

// Create returns a writer for the artifact at raw. Local files are written
// to a temporary sibling and renamed into place on Close, so readers never
// see a partial artifact.
func (o *Opener) Create(ctx context.Context, raw string) (io.WriteCloser, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	if !loc.IsGCS() {
		return createLocal(loc.Path)
	}

	client, err := o.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	w := client.Bucket(loc.Bucket).Object(loc.Path).NewWriter(ctx)
	w.ContentType = contentTypeFor(loc.Path)
	return w, nil
}

// Close releases the Cloud Storage client if one was created.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client == nil {
		return nil
	}
	err := o.client.Close()
	o.client = nil
	return err
}

func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".json"):
		return "application/json"
	case strings.HasSuffix(path, ".gz"):
		return "application/gzip"
	default:
		return "application/octet-stream"
	}
}

type atomicFile struct {
	*os.File
	target string
}

func createLocal(path string) (io.WriteCloser, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &atomicFile{File: f, target: path}, nil
}

// Abort discards the temporary file without touching the target.
func (f *atomicFile) Abort() {
	_ = f.File.Close()      //nolint:errcheck // discarding
	_ = os.Remove(f.Name()) //nolint:errcheck // best-effort cleanup of temp file
}

func (f *atomicFile) Close() error {
	if err := f.File.Close(); err != nil {
		_ = os.Remove(f.Name()) //nolint:errcheck // best-effort cleanup of temp file
		return err
	}
	if err := os.Rename(f.Name(), f.target); err != nil {
		_ = os.Remove(f.Name()) //nolint:errcheck // best-effort cleanup of temp file
		return fmt.Errorf("install %s: %w", f.target, err)
	}
	return nil
}
