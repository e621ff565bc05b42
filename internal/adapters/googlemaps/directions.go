package googlemaps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"github.com/samirrijal/routeview/internal/core/domain"
)

// Directions implements ports.DirectionsProvider with the Directions API in
// driving mode.
type Directions struct {
	client   *maps.Client
	language string
}

// NewDirections creates a new Directions adapter.
func NewDirections(client *maps.Client, language string) *Directions {
	return &Directions{client: client, language: language}
}

func (d *Directions) Route(ctx context.Context, req domain.RouteRequest) (*domain.RouteResult, error) {
	routes, _, err := d.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      req.Origin.String(),
		Destination: req.Destination.String(),
		Mode:        maps.TravelModeDriving,
		Language:    d.language,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: directions: %w", domain.ErrRouteRequest, err)
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: no route between %s and %s", domain.ErrRouteRequest, req.Origin, req.Destination)
	}

	r := routes[0]
	points, err := maps.DecodePolyline(r.OverviewPolyline.Points)
	if err != nil {
		return nil, fmt.Errorf("%w: decode overview polyline: %w", domain.ErrRouteRequest, err)
	}

	coords := make([]domain.Coordinate, len(points))
	for i, p := range points {
		coords[i] = domain.Coordinate{Latitude: p.Lat, Longitude: p.Lng}
	}

	var meters int
	var dur time.Duration
	for _, leg := range r.Legs {
		meters += leg.Meters
		dur += leg.Duration
	}

	bounds := domain.Bounds{
		MinLat: r.Bounds.SouthWest.Lat,
		MinLon: r.Bounds.SouthWest.Lng,
		MaxLat: r.Bounds.NorthEast.Lat,
		MaxLon: r.Bounds.NorthEast.Lng,
	}
	if bounds == (domain.Bounds{}) {
		bounds, _ = domain.BoundsOf(coords)
	}

	return &domain.RouteResult{
		Coordinates:    coords,
		Bounds:         bounds,
		DistanceMeters: meters,
		Duration:       dur,
	}, nil
}
