package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used for all distances
const EarthRadiusMeters = 6371000.0

// DistanceMeters calculates the great-circle distance between two WGS-84 points in meters.
// It is the only distance formula in the codebase; every other call site delegates here.
// NaN coordinates propagate to the result.
func DistanceMeters(a, b Point) float64 {
	if math.IsNaN(a.Lat) || math.IsNaN(a.Lon) || math.IsNaN(b.Lat) || math.IsNaN(b.Lon) {
		return math.NaN()
	}
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// IsWithinGeofence reports whether point lies inside the circle around center.
// The boundary is inclusive.
func IsWithinGeofence(point, center Point, radiusMeters, toleranceMeters float64) bool {
	return DistanceMeters(point, center) <= radiusMeters+toleranceMeters
}
