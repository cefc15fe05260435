// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Package testinfra starts throwaway containers for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/database/...
//
// # Postgres Container
//
// Unit tests run the store against in-memory DuckDB. The Postgres dialect
// (age arithmetic, pgx placeholders, DOUBLE PRECISION casts) is only
// exercised against a real server:
//
//	func TestPostgresViews(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//
//	    store, err := database.Open(ctx, pg.DatabaseConfig(), zerolog.Nop())
//	    // ...
//	}
//
// Tests are skipped when Docker is unavailable. The first run pulls the
// image; later runs use the local cache.
package testinfra
