// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package recommend

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// UnknownDistanceKm is returned when either endpoint has no coordinate.
	// It sorts after every real distance on Earth.
	UnknownDistanceKm = 9999.0
)

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// coordinateOf returns nil unless both components are present.
func coordinateOf(lat, lng *float64) *Coordinate {
	if lat == nil || lng == nil {
		return nil
	}
	return &Coordinate{Lat: *lat, Lng: *lng}
}

// HaversineKm returns the great-circle distance between a and b in
// kilometres, or UnknownDistanceKm if either is nil or not finite.
func HaversineKm(a, b *Coordinate) float64 {
	if a == nil || b == nil {
		return UnknownDistanceKm
	}

	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)

	d := 2 * EarthRadiusKm * math.Asin(math.Sqrt(math.Min(1, h)))
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return UnknownDistanceKm
	}
	return d
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// roundKm rounds a distance to two decimals for presentation and ranking.
func roundKm(d float64) float64 {
	return math.Round(d*100) / 100
}
