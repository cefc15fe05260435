// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Note: This package has no dependencies on other internal packages. The
// DataSource interface lets the database layer feed snapshots without an
// import cycle.

// DataSource provides the three read-only views a snapshot is built from.
type DataSource interface {
	// Children returns child profiles. A child may appear more than once
	// when it has bookings with several providers.
	Children(ctx context.Context) ([]ChildProfile, error)

	// Activities returns activity profiles in a stable source order.
	Activities(ctx context.Context) ([]ActivityProfile, error)

	// Interactions returns (child, activity, rating) records.
	Interactions(ctx context.Context) ([]InteractionRecord, error)
}

// SnapshotBuilder turns data source rows into a Snapshot.
type SnapshotBuilder struct {
	source DataSource
	alpha  float64
	logger zerolog.Logger
}

// NewSnapshotBuilder creates a builder.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSnapshotBuilder(source DataSource, alpha float64, logger zerolog.Logger) *SnapshotBuilder {
	return &SnapshotBuilder{source: source, alpha: alpha, logger: logger}
}

// Build reads all three views concurrently and assembles a snapshot against
// assets. Version and RefreshedAt are left for the caller to stamp.
func (b *SnapshotBuilder) Build(ctx context.Context, assets *Assets) (*Snapshot, error) {
	var (
		children     []ChildProfile
		activities   []ActivityProfile
		interactions []InteractionRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		children, err = b.source.Children(gctx)
		if err != nil {
			return fmt.Errorf("fetch children: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		activities, err = b.source.Activities(gctx)
		if err != nil {
			return fmt.Errorf("fetch activities: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		interactions, err = b.source.Interactions(gctx)
		if err != nil {
			return fmt.Errorf("fetch interactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Assets:   assets,
		Children: buildChildTable(children),
	}
	snap.Activities, snap.ActivityOrder = buildActivityTable(activities)
	snap.Popular = buildPopularity(interactions, snap.Activities)

	if len(interactions) == 0 {
		b.logger.Warn().Msg("no interaction rows, matrix not built")
		return snap, nil
	}

	snap.Matrix, snap.Stats = BuildMatrix(interactions, assets.Children, assets.Activities, b.alpha)
	if snap.Matrix == nil {
		b.logger.Warn().
			Int("rows", len(interactions)).
			Int("unknown_child", snap.Stats.UnknownChild).
			Int("unknown_activity", snap.Stats.UnknownActivity).
			Int("missing_rating", snap.Stats.MissingRating).
			Msg("no encodable interaction rows, matrix not built")
	}
	return snap, nil
}

// buildChildTable indexes children by id. When a child appears more than
// once, the first row carrying a full coordinate wins.
func buildChildTable(rows []ChildProfile) map[string]*ChildProfile {
	table := make(map[string]*ChildProfile, len(rows))
	for i := range rows {
		row := &rows[i]
		existing, ok := table[row.ID]
		if ok && (existing.Location() != nil || row.Location() == nil) {
			continue
		}
		table[row.ID] = row
	}
	return table
}

// buildActivityTable indexes activities by id and records first-seen order.
func buildActivityTable(rows []ActivityProfile) (map[string]*ActivityProfile, []string) {
	table := make(map[string]*ActivityProfile, len(rows))
	order := make([]string, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if _, ok := table[row.ID]; !ok {
			order = append(order, row.ID)
		}
		table[row.ID] = row
	}
	return table, order
}

type ratingStat struct {
	id    string
	sum   float64
	count int
}

func (s ratingStat) mean() float64 {
	return s.sum / float64(max(s.count, 1))
}

// buildPopularity orders activity ids by mean rating then rating count, both
// descending. A record without a rating counts toward the count with a
// rating of zero. Ties keep first-seen order. Ids missing from activities
// are dropped.
func buildPopularity(records []InteractionRecord, activities map[string]*ActivityProfile) []string {
	pos := make(map[string]int)
	stats := make([]ratingStat, 0)
	for _, rec := range records {
		i, ok := pos[rec.ActivityID]
		if !ok {
			i = len(stats)
			pos[rec.ActivityID] = i
			stats = append(stats, ratingStat{id: rec.ActivityID})
		}
		if rec.Rating != nil {
			stats[i].sum += *rec.Rating
		}
		stats[i].count++
	}

	sort.SliceStable(stats, func(i, j int) bool {
		mi, mj := stats[i].mean(), stats[j].mean()
		if mi != mj {
			return mi > mj
		}
		return stats[i].count > stats[j].count
	})

	popular := make([]string, 0, len(stats))
	for _, s := range stats {
		if _, ok := activities[s.id]; ok {
			popular = append(popular, s.id)
		}
	}
	return popular
}
