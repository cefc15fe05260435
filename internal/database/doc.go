// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Package database provides the read-only data-store views the
// recommendation snapshot is built from.
//
// # Overview
//
// Store wraps a database/sql pool opened with one of two drivers:
//
//   - duckdb: embedded DuckDB, used for local development and tests
//     (":memory:" is accepted as a path)
//   - postgres: the production relational store, through pgx's stdlib driver
//
// The CRUD services own the schema in production. CreateSchema installs a
// compatible schema for embedded databases.
//
// # Views
//
// Store implements recommend.DataSource:
//
//   - Children: every child LEFT JOINed through its bookings to provider
//     locations, so a child appears once per booking and children without
//     bookings still appear. Age is derived from birthdate, falling back to
//     the stored age.
//   - Activities: every activity with its provider location.
//   - Interactions: one row per booking with the child's mean feedback rating
//     for that activity, plus feedback rows with no matching booking.
//
// # Resilience
//
// Each view read runs through a gobreaker circuit breaker. After
// BreakerFailures consecutive failures reads fail fast with
// gobreaker.ErrOpenState until BreakerTimeout elapses, which lets the
// engine keep serving the previous snapshot without piling queries onto a
// struggling store. Caller cancellations never count as failures.
//
// # Metrics
//
// Query latency, errors and row counts are recorded through the metrics
// package (db_query_duration_seconds, db_query_errors_total,
// db_rows_read_total) together with the circuit breaker collectors.
package database
