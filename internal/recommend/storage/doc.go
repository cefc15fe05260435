// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Package storage persists the recommendation artifacts: the trained ALS
// model and the child and activity encoders.
//
// # Storage Format
//
// The model file is a gob-encoded envelope holding ModelMetadata and a
// gzip-compressed, gob-encoded ALSModelState. The metadata carries a SHA-256
// checksum of the uncompressed state, verified on every load:
//
//	saifi_model.gob.gz
//	  - Metadata (ModelMetadata)
//	  - CompressedData (gzip(gob(ALSModelState)))
//
// Encoders are JSON objects mapping identifier to dense index:
//
//	{"3f1c...": 0, "9a2e...": 1}
//
// # Locations
//
// Artifact locations may be plain paths, file:// URLs or gs://bucket/object
// URLs. Cloud Storage clients are created on first use and honour
// STORAGE_EMULATOR_HOST.
//
// # Usage Example
//
//	opener := storage.NewOpener()
//	defer opener.Close()
//
//	artifacts := storage.NewArtifactStore(opener, storage.Paths{
//	    Model:           "gs://saifi-models/saifi_model.gob.gz",
//	    ChildEncoder:    "gs://saifi-models/child_encoder.json",
//	    ActivityEncoder: "gs://saifi-models/activity_encoder.json",
//	}, logger)
//
//	engine, err := recommend.NewEngine(cfg, artifacts, store, logger)
package storage
