// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 60*time.Second)
}

// CreateSchema creates the tables the views read, if they do not exist.
// Production Postgres schemas are owned by the CRUD services; this is for
// embedded databases and tests. Identifiers are text so both drivers accept
// the same statements.
func (s *Store) CreateSchema(ctx context.Context) error {
	ctx, cancel := schemaContext(ctx)
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	for _, query := range indexQueries() {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS providers (
			provider_id VARCHAR PRIMARY KEY,
			name VARCHAR,
			email VARCHAR,
			phone VARCHAR,
			location_lat DOUBLE PRECISION,
			location_lng DOUBLE PRECISION,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS children (
			child_id VARCHAR PRIMARY KEY,
			parent_id VARCHAR,
			first_name VARCHAR,
			last_name VARCHAR,
			birthdate DATE,
			age INTEGER,
			gender VARCHAR,
			interests VARCHAR,
			notes VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS activities (
			activity_id VARCHAR PRIMARY KEY,
			provider_id VARCHAR,
			title VARCHAR,
			description VARCHAR,
			type VARCHAR,
			price DOUBLE PRECISION,
			gender VARCHAR,
			age_from INTEGER,
			age_to INTEGER,
			capacity INTEGER DEFAULT 0,
			duration INTEGER DEFAULT 0,
			start_date DATE,
			end_date DATE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			booking_id VARCHAR PRIMARY KEY,
			parent_id VARCHAR,
			child_id VARCHAR,
			activity_id VARCHAR,
			provider_id VARCHAR,
			status VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			feedback_id VARCHAR PRIMARY KEY,
			child_id VARCHAR,
			activity_id VARCHAR,
			rating INTEGER,
			comment VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
}

func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_bookings_child ON bookings(child_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_activity ON bookings(activity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_pair ON feedback(child_id, activity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_provider ON activities(provider_id)`,
	}
}
