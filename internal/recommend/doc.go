// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Package recommend serves activity recommendations for children.
//
// # Architecture
//
// A pretrained matrix-factorization model ranks activities for children it
// has seen before (the warm path). Results are re-ranked by great-circle
// distance between the child and the activity provider. Children the model
// does not know, or snapshots without interaction signal, are served from a
// popularity and distance ordering instead (the fallback path).
//
// State lives in an immutable Snapshot: the loaded artifacts, metadata
// tables, popularity ordering and the confidence-weighted interaction
// matrix. Refreshes rebuild a whole Snapshot under a single mutex and install
// it with one atomic pointer swap, so readers never block and never observe
// a matrix indexed against a different encoder.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), artifacts, store, logger)
//	if err != nil {
//	    return err
//	}
//	if err := engine.LoadAssets(ctx); err != nil {
//	    return err // fatal: missing or corrupt artifacts
//	}
//	_, _ = engine.Refresh(ctx, true)
//
//	result, err := engine.Recommend(ctx, childID, 10)
//
// Recommend only returns an error when the artifacts could not be loaded.
// Every other failure degrades to a fallback Result.
//
// # Thread Safety
//
// Engine is safe for concurrent use. Recommend and Health read the current
// snapshot without locking; Refresh serializes rebuilds.
package recommend
