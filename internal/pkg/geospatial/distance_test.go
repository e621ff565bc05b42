package geospatial

import (
	"math"
	"testing"

	"github.com/samirrijal/routeview/internal/core/domain"
)

func TestDistance(t *testing.T) {
	// Denton square to UNT, roughly 1.9 km.
	square := domain.Coordinate{Latitude: 33.2148, Longitude: -97.1331}
	unt := domain.Coordinate{Latitude: 33.2107, Longitude: -97.1527}

	d := Distance(square, unt)
	if d < 1700 || d > 2100 {
		t.Errorf("expected ~1900m, got %.0f", d)
	}
	if Distance(square, square) != 0 {
		t.Error("expected zero distance for identical points")
	}
}

func TestPathLength(t *testing.T) {
	a := domain.Coordinate{Latitude: 0, Longitude: 0}
	b := domain.Coordinate{Latitude: 0, Longitude: 1}
	c := domain.Coordinate{Latitude: 0, Longitude: 2}

	got := PathLength([]domain.Coordinate{a, b, c})
	want := 2 * Distance(a, b)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %.3f, got %.3f", want, got)
	}
	if PathLength([]domain.Coordinate{a}) != 0 {
		t.Error("single point path must have zero length")
	}
}
