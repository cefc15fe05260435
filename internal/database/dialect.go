// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package database

import "fmt"

// dialect holds the SQL fragments that differ between drivers.
type dialect struct {
	// driverName is the database/sql driver registered by the import.
	driverName string
	// ageExpr derives whole years from c.birthdate.
	ageExpr string
}

var (
	duckdbDialect = dialect{
		driverName: "duckdb",
		ageExpr:    "CAST(EXTRACT(year FROM age(CAST(c.birthdate AS TIMESTAMP))) AS INTEGER)",
	}

	postgresDialect = dialect{
		driverName: "pgx",
		ageExpr:    "EXTRACT(YEAR FROM AGE(c.birthdate))::int",
	}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverDuckDB:
		return duckdbDialect, nil
	case DriverPostgres:
		return postgresDialect, nil
	default:
		return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

func (d dialect) childrenQuery() string {
	return `
		SELECT
			CAST(c.child_id AS VARCHAR) AS child_id,
			COALESCE(` + d.ageExpr + `, CAST(c.age AS INTEGER)) AS age,
			c.gender,
			CAST(c.interests AS VARCHAR) AS interests,
			CAST(pr.location_lat AS DOUBLE PRECISION) AS lat,
			CAST(pr.location_lng AS DOUBLE PRECISION) AS lng
		FROM children c
		LEFT JOIN bookings b ON c.child_id = b.child_id
		LEFT JOIN providers pr ON b.provider_id = pr.provider_id
		ORDER BY c.child_id, b.created_at NULLS LAST
	`
}

func (d dialect) activitiesQuery() string {
	return `
		SELECT
			CAST(a.activity_id AS VARCHAR) AS activity_id,
			COALESCE(a.title, '') AS activity_name,
			COALESCE(a.type, '') AS category,
			CAST(a.price AS DOUBLE PRECISION) AS price,
			CAST(a.duration AS INTEGER) AS duration_hours,
			CAST(a.age_from AS INTEGER) AS min_age,
			CAST(a.age_to AS INTEGER) AS max_age,
			CAST(pr.location_lat AS DOUBLE PRECISION) AS lat,
			CAST(pr.location_lng AS DOUBLE PRECISION) AS lng
		FROM activities a
		LEFT JOIN providers pr ON a.provider_id = pr.provider_id
		ORDER BY a.activity_id
	`
}

// interactionsQuery returns one row per booking carrying the mean rating the
// child gave the activity, plus rated pairs that were never booked.
func (d dialect) interactionsQuery() string {
	return `
		WITH rated AS (
			SELECT
				CAST(child_id AS VARCHAR) AS child_id,
				CAST(activity_id AS VARCHAR) AS activity_id,
				AVG(CAST(rating AS DOUBLE PRECISION)) AS rating
			FROM feedback
			WHERE rating IS NOT NULL
			  AND child_id IS NOT NULL
			  AND activity_id IS NOT NULL
			GROUP BY child_id, activity_id
		),
		booked AS (
			SELECT
				CAST(child_id AS VARCHAR) AS child_id,
				CAST(activity_id AS VARCHAR) AS activity_id
			FROM bookings
			WHERE child_id IS NOT NULL
			  AND activity_id IS NOT NULL
		)
		SELECT b.child_id, b.activity_id, r.rating
		FROM booked b
		LEFT JOIN rated r ON r.child_id = b.child_id AND r.activity_id = b.activity_id
		UNION ALL
		SELECT r.child_id, r.activity_id, r.rating
		FROM rated r
		WHERE NOT EXISTS (
			SELECT 1 FROM booked b
			WHERE b.child_id = r.child_id AND b.activity_id = r.activity_id
		)
		ORDER BY child_id, activity_id
	`
}
