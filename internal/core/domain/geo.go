package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Default camera span used for point moves, matching the map's close zoom.
const (
	DefaultLatitudeDelta  = 0.015
	DefaultLongitudeDelta = 0.0121
)

// Coordinate is a WGS 84 position. It is a value type and never mutated.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate is finite and inside WGS 84 ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// String formats the coordinate as "lat,lng", the form accepted by most map APIs.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// Point converts to an orb point (lon, lat order).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// CoordinateFromPoint converts an orb point back to a Coordinate.
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Latitude: p.Lat(), Longitude: p.Lon()}
}

// Region is the visible area of the map camera.
type Region struct {
	Center         Coordinate `json:"center"`
	LatitudeDelta  float64    `json:"latitude_delta"`
	LongitudeDelta float64    `json:"longitude_delta"`
}

// RegionAround returns a region centered on c with the default close-zoom span.
func RegionAround(c Coordinate) Region {
	return Region{Center: c, LatitudeDelta: DefaultLatitudeDelta, LongitudeDelta: DefaultLongitudeDelta}
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsOf returns the minimal bounding box of coords. ok is false for an empty slice.
func BoundsOf(coords []Coordinate) (b Bounds, ok bool) {
	if len(coords) == 0 {
		return Bounds{}, false
	}
	mp := make(orb.MultiPoint, len(coords))
	for i, c := range coords {
		mp[i] = c.Point()
	}
	bound := mp.Bound()
	return Bounds{
		MinLat: bound.Min.Lat(),
		MinLon: bound.Min.Lon(),
		MaxLat: bound.Max.Lat(),
		MaxLon: bound.Max.Lon(),
	}, true
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Coordinate {
	return Coordinate{
		Latitude:  (b.MinLat + b.MaxLat) / 2,
		Longitude: (b.MinLon + b.MaxLon) / 2,
	}
}

// EdgePadding is screen-space padding in pixels applied when fitting bounds.
type EdgePadding struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// UniformPadding returns the same padding on all four edges.
func UniformPadding(px int) EdgePadding {
	return EdgePadding{Top: px, Right: px, Bottom: px, Left: px}
}

// Viewport is the pixel size of the map surface.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FitRegion computes the smallest region that shows every coordinate inside
// the viewport once the pixel padding is reserved. A degenerate box (single
// point or zero-length route) falls back to the default span. It reports
// false when the padding leaves no room inside the viewport.
func FitRegion(coords []Coordinate, padding EdgePadding, vp Viewport) (Region, bool) {
	b, ok := BoundsOf(coords)
	if !ok {
		return Region{}, false
	}

	w, h := float64(vp.Width), float64(vp.Height)
	usableW := w - float64(padding.Left+padding.Right)
	usableH := h - float64(padding.Top+padding.Bottom)
	if usableW <= 0 || usableH <= 0 {
		return Region{}, false
	}

	latDelta := math.Max((b.MaxLat-b.MinLat)*h/usableH, DefaultLatitudeDelta)
	lonDelta := math.Max((b.MaxLon-b.MinLon)*w/usableW, DefaultLongitudeDelta)

	center := b.Center()
	center.Latitude += float64(padding.Top-padding.Bottom) / 2 * latDelta / h
	center.Longitude -= float64(padding.Left-padding.Right) / 2 * lonDelta / w

	return Region{Center: center, LatitudeDelta: latDelta, LongitudeDelta: lonDelta}, true
}
