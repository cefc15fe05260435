// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import (
	"fmt"
	"math"
	"sort"
)

const (
	minModelCandidates = 50
	minRerankPool      = 50
)

// modelTopN is how many candidates the model is asked for.
func modelTopN(limit int) int {
	return max(minModelCandidates, limit*5)
}

// rerankPool bounds how many resolved candidates are distance re-ranked.
func rerankPool(limit int) int {
	return max(limit*3, minRerankPool)
}

// scoreWarm ranks activities for a child known to the model. Previously
// booked activities are not filtered. A panic inside the model is returned
// as an error so the caller can fall back.
//
// A missing child or activity coordinate yields UnknownDistanceKm, which
// sorts those activities last. The fallback path defaults coordinates to
// 0,0 instead.
func scoreWarm(snap *Snapshot, childID string, userIndex, limit int) (items []Recommendation, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("model panic: %v", r)
		}
	}()

	candidates, err := snap.Assets.Model.Recommend(userIndex, snap.Matrix.Row(userIndex), modelTopN(limit))
	if err != nil {
		return nil, fmt.Errorf("model recommend: %w", err)
	}

	var origin *Coordinate
	if child, ok := snap.Children[childID]; ok {
		origin = child.Location()
	}

	pool := rerankPool(limit)
	items = make([]Recommendation, 0, min(len(candidates), pool))
	for _, c := range candidates {
		id, ok := snap.Assets.ActivityReverse[c.ItemIndex]
		if !ok {
			continue
		}
		act, ok := snap.Activities[id]
		if !ok {
			continue
		}
		if math.IsNaN(c.Score) {
			return nil, fmt.Errorf("model returned NaN score for item %d", c.ItemIndex)
		}

		items = append(items, newRecommendation(act, HaversineKm(origin, act.Location()), c.Score, SourceALS))
		if len(items) >= pool {
			break
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DistanceKm != items[j].DistanceKm {
			return items[i].DistanceKm < items[j].DistanceKm
		}
		return items[i].Score > items[j].Score
	})
	return truncate(items, limit), nil
}

// newRecommendation fills response defaults for missing activity columns.
func newRecommendation(act *ActivityProfile, distanceKm, score float64, source Source) Recommendation {
	rec := Recommendation{
		ActivityID:   act.ID,
		ActivityName: act.Name,
		Score:        score,
		DistanceKm:   roundKm(distanceKm),
		Category:     act.Category,
		MaxAge:       99,
		Source:       source,
	}
	if act.Price != nil {
		rec.Price = *act.Price
	}
	if act.DurationHours != nil {
		rec.DurationHours = *act.DurationHours
	}
	if act.MinAge != nil {
		rec.MinAge = *act.MinAge
	}
	if act.MaxAge != nil {
		rec.MaxAge = *act.MaxAge
	}
	if act.Lat != nil {
		rec.Lat = *act.Lat
	}
	if act.Lng != nil {
		rec.Lng = *act.Lng
	}
	return rec
}

func truncate(items []Recommendation, limit int) []Recommendation {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
