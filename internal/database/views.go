// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/saifi/internal/metrics"
	"github.com/tomtom215/saifi/internal/recommend"
)

// Children implements recommend.DataSource.
func (s *Store) Children(ctx context.Context) ([]recommend.ChildProfile, error) {
	return readView(ctx, s, "children", s.dialect.childrenQuery(), scanChild)
}

// Activities implements recommend.DataSource.
func (s *Store) Activities(ctx context.Context) ([]recommend.ActivityProfile, error) {
	return readView(ctx, s, "activities", s.dialect.activitiesQuery(), scanActivity)
}

// Interactions implements recommend.DataSource.
func (s *Store) Interactions(ctx context.Context) ([]recommend.InteractionRecord, error) {
	return readView(ctx, s, "interactions", s.dialect.interactionsQuery(), scanInteraction)
}

// BreakerState returns the state of the circuit breaker guarding reads.
func (s *Store) BreakerState() string {
	return s.breaker.State()
}

// readView runs query through the circuit breaker and scans every row.
func readView[T any](ctx context.Context, s *Store, table, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	start := time.Now()
	out, err := castResult[[]T](s.breaker.execute(func() (interface{}, error) {
		items, err := queryRows(ctx, s, query, scan)
		if err != nil {
			return nil, err
		}
		return &items, nil
	}))
	metrics.RecordDBQuery("SELECT", table, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	metrics.RecordDBRows(table, len(*out))
	s.logger.Debug().Str("view", table).Int("rows", len(*out)).Dur("elapsed", time.Since(start)).Msg("view read")
	return *out, nil
}

func queryRows[T any](ctx context.Context, s *Store, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, s.logger, "rows")

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return items, nil
}

func scanChild(rows *sql.Rows) (recommend.ChildProfile, error) {
	var (
		c         recommend.ChildProfile
		age       sql.NullInt64
		gender    sql.NullString
		interests sql.NullString
		lat, lng  sql.NullFloat64
	)
	if err := rows.Scan(&c.ID, &age, &gender, &interests, &lat, &lng); err != nil {
		return c, fmt.Errorf("scan child: %w", err)
	}
	c.Age = intPtr(age)
	c.Gender = gender.String
	c.Interests = parseInterests(interests.String)
	c.Lat = floatPtr(lat)
	c.Lng = floatPtr(lng)
	return c, nil
}

func scanActivity(rows *sql.Rows) (recommend.ActivityProfile, error) {
	var (
		a                        recommend.ActivityProfile
		price                    sql.NullFloat64
		duration, minAge, maxAge sql.NullInt64
		lat, lng                 sql.NullFloat64
	)
	if err := rows.Scan(&a.ID, &a.Name, &a.Category, &price, &duration, &minAge, &maxAge, &lat, &lng); err != nil {
		return a, fmt.Errorf("scan activity: %w", err)
	}
	a.Price = floatPtr(price)
	a.DurationHours = intPtr(duration)
	a.MinAge = intPtr(minAge)
	a.MaxAge = intPtr(maxAge)
	a.Lat = floatPtr(lat)
	a.Lng = floatPtr(lng)
	return a, nil
}

func scanInteraction(rows *sql.Rows) (recommend.InteractionRecord, error) {
	var (
		r      recommend.InteractionRecord
		rating sql.NullFloat64
	)
	if err := rows.Scan(&r.ChildID, &r.ActivityID, &rating); err != nil {
		return r, fmt.Errorf("scan interaction: %w", err)
	}
	r.Rating = floatPtr(rating)
	return r, nil
}

// parseInterests accepts Postgres array text ("{chess,\"arts, crafts\"}"),
// DuckDB list text ("[chess, arts]") or a plain comma separated string.
// Commas inside double quotes belong to the element; a backslash escapes
// the next character inside quotes.
func parseInterests(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	flush := func() {
		p := strings.Trim(strings.TrimSpace(cur.String()), "'")
		if p != "" {
			out = append(out, p)
		}
		cur.Reset()
	}
	for _, r := range raw {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
