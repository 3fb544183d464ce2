package geo

import (
	"math"
	"testing"
)

func TestDistanceKmIdenticalPoints(t *testing.T) {
	pts := []Coord{
		{Lat: 0, Lon: 0},
		{Lat: 13.0827, Lon: 80.2707},
		{Lat: -45.5, Lon: 170.2},
	}
	for _, p := range pts {
		if d := DistanceKm(p, p); d != 0 {
			t.Errorf("DistanceKm(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	chennai := Coord{Lat: 13.0827, Lon: 80.2707}
	madurai := Coord{Lat: 9.9252, Lon: 78.1198}

	ab := DistanceKm(chennai, madurai)
	ba := DistanceKm(madurai, chennai)
	if ab != ba {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceKmKnownPair(t *testing.T) {
	// Chennai and Madurai district centroids; the great-circle distance is
	// roughly 422 km.
	chennai := Coord{Lat: 13.0827, Lon: 80.2707}
	madurai := Coord{Lat: 9.9252, Lon: 78.1198}

	got := DistanceKm(chennai, madurai)
	if math.Abs(got-422.1) > 0.5 {
		t.Errorf("DistanceKm(chennai, madurai) = %v, want ~422.1", got)
	}
}

func TestDistanceKmRounding(t *testing.T) {
	a := Coord{Lat: 11.0168, Lon: 76.9558}
	b := Coord{Lat: 11.3410, Lon: 77.7172}

	got := DistanceKm(a, b)
	if got != math.Round(got*10)/10 {
		t.Errorf("DistanceKm = %v, want one decimal place", got)
	}
	if got <= 0 {
		t.Errorf("DistanceKm = %v, want > 0 for distinct points", got)
	}
}
