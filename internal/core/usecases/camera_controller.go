package usecases

import (
	"log/slog"
	"time"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/ports"
	"github.com/samirrijal/routeview/internal/pkg/metrics"
)

// DefaultMoveDuration is the camera animation time for point moves.
const DefaultMoveDuration = 1000 * time.Millisecond

// CameraController owns the visible map region. It is driven from the
// screen loop only.
type CameraController struct {
	surface  ports.CameraSurface
	viewport domain.Viewport
	region   domain.Optional[domain.Region]
	logger   *slog.Logger
}

// NewCameraController creates a controller with no surface attached.
func NewCameraController(vp domain.Viewport, logger *slog.Logger) *CameraController {
	if logger == nil {
		logger = slog.Default()
	}
	return &CameraController{viewport: vp, logger: logger}
}

// Attach installs the map surface handle once the map reports ready.
func (c *CameraController) Attach(surface ports.CameraSurface) {
	c.surface = surface
}

// Attached reports whether a surface is installed.
func (c *CameraController) Attached() bool {
	return c.surface != nil
}

// Region returns the last region sent to the surface.
func (c *CameraController) Region() domain.Optional[domain.Region] {
	return c.region
}

// MoveTo animates the camera center to coord with the default span. Each
// call supersedes any animation in flight. It reports whether the move
// reached a surface.
func (c *CameraController) MoveTo(coord domain.Coordinate, d time.Duration) bool {
	if !coord.Valid() {
		c.logger.Warn("camera move rejected: invalid center", "coordinate", coord.String())
		metrics.CameraOperations.WithLabelValues("move", "rejected").Inc()
		return false
	}
	if c.surface == nil {
		metrics.CameraOperations.WithLabelValues("move", "dropped").Inc()
		return false
	}

	region := domain.RegionAround(coord)
	c.surface.AnimateToRegion(region, d)
	c.region = domain.Some(region)
	metrics.CameraOperations.WithLabelValues("move", "applied").Inc()
	return true
}

// FitToBounds frames every coordinate with the given pixel padding.
func (c *CameraController) FitToBounds(coords []domain.Coordinate, padding domain.EdgePadding, animated bool) bool {
	region, ok := domain.FitRegion(coords, padding, c.viewport)
	if !ok {
		metrics.CameraOperations.WithLabelValues("fit", "rejected").Inc()
		return false
	}
	if c.surface == nil {
		metrics.CameraOperations.WithLabelValues("fit", "dropped").Inc()
		return false
	}

	c.surface.FitToCoordinates(coords, padding, animated)
	c.region = domain.Some(region)
	metrics.CameraOperations.WithLabelValues("fit", "applied").Inc()
	return true
}
