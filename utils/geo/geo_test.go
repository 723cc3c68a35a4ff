package geo

import (
	"math"
	"testing"
)

func TestHaversineMetersZeroForSamePoint(t *testing.T) {
	if d := HaversineMeters(40.7128, -74.0060, 40.7128, -74.0060); d != 0 {
		t.Fatalf("expected 0 meters for identical points, got %f", d)
	}
}

func TestHaversineMetersOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is roughly 111.2 km everywhere.
	d := HaversineMeters(0, 0, 1, 0)
	if math.Abs(d-111195) > 100 {
		t.Fatalf("expected ~111195 meters for one degree of latitude, got %f", d)
	}
}

func TestHaversineMetersSymmetric(t *testing.T) {
	a := HaversineMeters(37.7749, -122.4194, 37.8044, -122.2712)
	b := HaversineMeters(37.8044, -122.2712, 37.7749, -122.4194)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("expected symmetric distance, got %f and %f", a, b)
	}
}

func TestMilesAwayFormatting(t *testing.T) {
	cases := []struct {
		meters float64
		want   string
	}{
		{0, "0.0 miles away"},
		{1609.34, "1.0 miles away"},
		{2414.01, "1.5 miles away"},
		{8046.7, "5.0 miles away"},
		{16093.4, "10.0 miles away"},
	}
	for _, tc := range cases {
		if got := MilesAway(tc.meters); got != tc.want {
			t.Fatalf("MilesAway(%f) = %q, want %q", tc.meters, got, tc.want)
		}
	}
}

func TestBoundingBoxIsCenteredSquare(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(40.0, -74.0, 16093.4)

	if math.Abs((minLat+maxLat)/2-40.0) > 1e-9 {
		t.Fatalf("box not centered on latitude: %f..%f", minLat, maxLat)
	}
	if math.Abs((minLon+maxLon)/2-(-74.0)) > 1e-9 {
		t.Fatalf("box not centered on longitude: %f..%f", minLon, maxLon)
	}

	// The latitude span of a 16093.4 m square is about 0.145 degrees.
	latSpan := maxLat - minLat
	if math.Abs(latSpan-0.1447) > 0.001 {
		t.Fatalf("unexpected latitude span %f", latSpan)
	}

	// Longitude span widens with latitude so the box stays square.
	lonSpan := maxLon - minLon
	if lonSpan <= latSpan {
		t.Fatalf("expected longitude span > latitude span at 40N, got %f vs %f", lonSpan, latSpan)
	}
}

func TestBoundingBoxLongitudeWidensTowardPoles(t *testing.T) {
	_, minLonEq, _, maxLonEq := boundsAt(0)
	_, minLonHi, _, maxLonHi := boundsAt(60)
	if (maxLonHi - minLonHi) <= (maxLonEq - minLonEq) {
		t.Fatal("expected wider longitude span at 60N than at the equator")
	}
}

func boundsAt(lat float64) (float64, float64, float64, float64) {
	return BoundingBox(lat, 0, 16093.4)
}
