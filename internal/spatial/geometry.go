package spatial

import (
	"math"
)

// Point represents a 2D point with latitude and longitude
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point has finite coordinates inside the WGS-84 ranges
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// PathLengthMeters calculates the total length of a path (sequence of points) in meters.
// Invalid points are stepped over so a single bad fix does not poison the sum.
func PathLengthMeters(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	var prev *Point
	for i := range points {
		if !points[i].Valid() {
			continue
		}
		if prev != nil {
			total += DistanceMeters(*prev, points[i])
		}
		prev = &points[i]
	}

	return total
}

// Centroid calculates the geographic centroid of a set of points
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}

	return Point{
		Lat: sumLat / float64(len(points)),
		Lon: sumLon / float64(len(points)),
	}
}

// RadiusOfGyration calculates the radius of gyration for a set of points.
// This measures the spatial dispersion around the centroid.
func RadiusOfGyration(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}

	center := Centroid(points)

	var sumSquaredDist float64
	for _, p := range points {
		dist := DistanceMeters(center, p)
		sumSquaredDist += dist * dist
	}

	return math.Sqrt(sumSquaredDist / float64(len(points)))
}
