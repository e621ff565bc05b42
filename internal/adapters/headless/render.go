package headless

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/routeview/internal/core/domain"
)

// Render encodes a screen view as a GeoJSON FeatureCollection: one point per
// marker, the route as a styled LineString and the camera region as a
// polygon. A blocked view has no features and carries its message.
func Render(v domain.View) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"screen_id":   v.ScreenID.String(),
		"permission":  v.Permission.String(),
		"route_state": v.RouteState.String(),
	}
	if v.Blocked {
		fc.ExtraMembers["message"] = v.Message
		return fc.MarshalJSON()
	}

	for _, m := range v.Markers {
		f := geojson.NewFeature(m.Coordinate.Point())
		f.Properties["kind"] = "marker"
		f.Properties["title"] = m.Title
		if m.Draggable {
			f.Properties["draggable"] = true
		}
		fc.Append(f)
	}

	if len(v.Route) > 0 {
		ls := make(orb.LineString, len(v.Route))
		for i, c := range v.Route {
			ls[i] = c.Point()
		}
		f := geojson.NewFeature(ls)
		f.Properties["kind"] = "route"
		f.Properties["stroke"] = v.RouteStyle.StrokeColor
		f.Properties["stroke-width"] = v.RouteStyle.StrokeWidth
		fc.Append(f)
	}

	if r, ok := v.Region.Get(); ok {
		f := geojson.NewFeature(regionBound(r).ToPolygon())
		f.Properties["kind"] = "camera"
		f.Properties["latitude_delta"] = r.LatitudeDelta
		f.Properties["longitude_delta"] = r.LongitudeDelta
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

func regionBound(r domain.Region) orb.Bound {
	halfLat, halfLon := r.LatitudeDelta/2, r.LongitudeDelta/2
	return orb.Bound{
		Min: orb.Point{r.Center.Longitude - halfLon, r.Center.Latitude - halfLat},
		Max: orb.Point{r.Center.Longitude + halfLon, r.Center.Latitude + halfLat},
	}
}
