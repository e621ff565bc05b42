// Package headless implements the map surface without a display. It keeps
// the camera state a real map view would have and renders it as GeoJSON.
package headless

import (
	"sync"
	"time"

	"github.com/samirrijal/routeview/internal/core/domain"
)

// OpKind names a camera operation.
type OpKind string

const (
	OpAnimate OpKind = "animate_to_region"
	OpFit     OpKind = "fit_to_coordinates"
)

// Operation is one camera call received by the surface.
type Operation struct {
	Kind        OpKind              `json:"kind"`
	Region      domain.Region       `json:"region"`
	Duration    time.Duration       `json:"duration,omitempty"`
	Coordinates []domain.Coordinate `json:"coordinates,omitempty"`
	Padding     domain.EdgePadding  `json:"padding,omitempty"`
	Animated    bool                `json:"animated,omitempty"`
	At          time.Time           `json:"at"`
}

// Surface implements ports.CameraSurface. A new call replaces the target of
// any animation in flight, so Region is always the latest target.
type Surface struct {
	viewport domain.Viewport

	mu     sync.Mutex
	ops    []Operation
	region domain.Optional[domain.Region]
}

// NewSurface creates a surface of the given pixel size.
func NewSurface(vp domain.Viewport) *Surface {
	return &Surface{viewport: vp}
}

func (s *Surface) AnimateToRegion(region domain.Region, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.region = domain.Some(region)
	s.ops = append(s.ops, Operation{Kind: OpAnimate, Region: region, Duration: d, At: time.Now()})
}

func (s *Surface) FitToCoordinates(coords []domain.Coordinate, padding domain.EdgePadding, animated bool) {
	region, ok := domain.FitRegion(coords, padding, s.viewport)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.region = domain.Some(region)
	s.ops = append(s.ops, Operation{
		Kind:        OpFit,
		Region:      region,
		Coordinates: append([]domain.Coordinate(nil), coords...),
		Padding:     padding,
		Animated:    animated,
		At:          time.Now(),
	})
}

// Operations returns the camera calls received so far.
func (s *Surface) Operations() []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Operation(nil), s.ops...)
}

// Region returns the current camera target.
func (s *Surface) Region() domain.Optional[domain.Region] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}
