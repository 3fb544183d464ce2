// Package geo contains pure geographic computation helpers.
package geo

import "math"

const earthRadiusKm = 6371.0

// Coord is a point in decimal degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceKm returns the great-circle (haversine) distance between a and b in
// kilometres, rounded to one decimal place. Identical coordinates yield 0.
func DistanceKm(a, b Coord) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	rLat1 := radians(a.Lat)
	rLat2 := radians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusKm*c*10) / 10
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
