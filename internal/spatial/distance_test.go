package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters_Identity(t *testing.T) {
	for _, p := range []Point{{0, 0}, {52.52, 13.405}, {-33.86, 151.21}, {90, 0}, {-90, 180}} {
		assert.Zero(t, DistanceMeters(p, p), "point %+v", p)
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := Point{Lat: 40.7128, Lon: -74.0060}
	b := Point{Lat: 51.5074, Lon: -0.1278}
	assert.InDelta(t, DistanceMeters(a, b), DistanceMeters(b, a), 1e-6)
}

func TestDistanceMeters_OneDegreeLatitude(t *testing.T) {
	d := DistanceMeters(Point{Lat: 10, Lon: 20}, Point{Lat: 11, Lon: 20})
	assert.InEpsilon(t, 111195.0, d, 0.01)
}

func TestDistanceMeters_MonotonicWithSeparation(t *testing.T) {
	origin := Point{Lat: 0, Lon: 0}
	prev := 0.0
	for _, lon := range []float64{0.001, 0.01, 0.1, 1, 10, 90, 179} {
		d := DistanceMeters(origin, Point{Lat: 0, Lon: lon})
		assert.Greater(t, d, prev)
		prev = d
	}
}

func TestDistanceMeters_NaNPropagates(t *testing.T) {
	d := DistanceMeters(Point{Lat: math.NaN(), Lon: 0}, Point{Lat: 0, Lon: 0})
	assert.True(t, math.IsNaN(d))
}

func TestIsWithinGeofence_BoundaryInclusive(t *testing.T) {
	center := Point{Lat: 48.8566, Lon: 2.3522}
	point := Point{Lat: 48.8576, Lon: 2.3522}
	d := DistanceMeters(point, center)
	require.Greater(t, d, 100.0)

	assert.True(t, IsWithinGeofence(point, center, d, 0))
	assert.False(t, IsWithinGeofence(point, center, d-1, 0))
	assert.True(t, IsWithinGeofence(point, center, d-1, 1.5))
}

func TestPathLengthMeters_SkipsInvalidPoints(t *testing.T) {
	a := Point{Lat: 0, Lon: 0}
	b := Point{Lat: 0, Lon: 0.01}
	c := Point{Lat: 0, Lon: 0.02}
	clean := PathLengthMeters([]Point{a, b, c})
	noisy := PathLengthMeters([]Point{a, {Lat: math.NaN(), Lon: 1}, b, {Lat: 200, Lon: 0}, c})

	assert.InDelta(t, DistanceMeters(a, c), clean, 1e-3)
	assert.InDelta(t, clean, noisy, 1e-9)
	assert.Zero(t, PathLengthMeters([]Point{a}))
}

func TestPoint_Valid(t *testing.T) {
	assert.True(t, Point{Lat: 90, Lon: -180}.Valid())
	assert.False(t, Point{Lat: 90.1, Lon: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lon: 180.5}.Valid())
	assert.False(t, Point{Lat: math.NaN(), Lon: 0}.Valid())
}

func TestRadiusOfGyration(t *testing.T) {
	assert.Zero(t, RadiusOfGyration(nil))
	pts := []Point{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 1}}
	assert.InDelta(t, 0, RadiusOfGyration(pts), 1e-6)
}
