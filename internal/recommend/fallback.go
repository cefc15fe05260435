// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import "sort"

// fallback ranks activities without the model: popular activities first
// (or every activity when nothing is rated), filtered by age range, then
// sorted nearest first. It never fails.
//
// Missing child coordinates are treated as (0, 0) so children without a
// location still get a deterministic ordering.
func fallback(snap *Snapshot, childID string, limit int) []Recommendation {
	origin := &Coordinate{}
	var age *int
	if child, ok := snap.Children[childID]; ok {
		if child.Lat != nil {
			origin.Lat = *child.Lat
		}
		if child.Lng != nil {
			origin.Lng = *child.Lng
		}
		age = child.Age
	}

	candidates := snap.Popular
	if len(candidates) == 0 {
		candidates = snap.ActivityOrder
	}

	pool := rerankPool(limit)
	items := make([]Recommendation, 0, min(len(candidates), pool))
	for _, id := range candidates {
		act, ok := snap.Activities[id]
		if !ok {
			continue
		}
		if !ageEligible(age, act) {
			continue
		}

		dest := &Coordinate{}
		if act.Lat != nil {
			dest.Lat = *act.Lat
		}
		if act.Lng != nil {
			dest.Lng = *act.Lng
		}

		items = append(items, newRecommendation(act, HaversineKm(origin, dest), 0, SourceFallback))
		if len(items) >= pool {
			break
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DistanceKm < items[j].DistanceKm
	})
	return truncate(items, limit)
}

// ageEligible excludes an activity only when the child's age and both
// bounds are known and the age is outside them.
func ageEligible(age *int, act *ActivityProfile) bool {
	if age == nil || act.MinAge == nil || act.MaxAge == nil {
		return true
	}
	return *act.MinAge <= *age && *age <= *act.MaxAge
}
