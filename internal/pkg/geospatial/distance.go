// Package geospatial measures distances along the earth's surface.
package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/samirrijal/routeview/internal/core/domain"
)

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b domain.Coordinate) float64 {
	return geo.DistanceHaversine(a.Point(), b.Point())
}

// PathLength sums the segment lengths of a polyline in meters.
func PathLength(path []domain.Coordinate) float64 {
	if len(path) < 2 {
		return 0
	}
	ls := make(orb.LineString, len(path))
	for i, c := range path {
		ls[i] = c.Point()
	}
	return geo.LengthHaversine(ls)
}
