package geo

import (
	"fmt"
	"math"
)

const (
	earthRadiusMeters = 6371000.0

	// MetersPerMile converts great-circle meters to miles for display.
	MetersPerMile = 1609.34
)

// HaversineMeters returns the great-circle distance in meters between two
// coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// MilesAway formats a distance in meters as a one-decimal miles label,
// e.g. "1.3 miles away".
func MilesAway(meters float64) string {
	return fmt.Sprintf("%.1f miles away", meters/MetersPerMile)
}

// BoundingBox returns the square region with the given side length in
// meters centered on (lat, lon), as min/max degree bounds. Longitude width
// is corrected for latitude so the box stays square on the ground.
func BoundingBox(lat, lon, sideMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	half := sideMeters / 2
	dLat := (half / earthRadiusMeters) * 180 / math.Pi
	dLon := dLat / math.Cos(lat*math.Pi/180)
	return lat - dLat, lon - dLon, lat + dLat, lon + dLon
}
