package ports

import (
	"context"
	"time"

	"github.com/samirrijal/routeview/internal/core/domain"
)

// PermissionService is the device's runtime permission API.
type PermissionService interface {
	// RequiresPrompt reports whether the platform needs an explicit consent
	// prompt. When false, the first location request acts as consent.
	RequiresPrompt() bool
	Request(ctx context.Context, kind domain.PermissionKind) (domain.PermissionState, error)
}

// LocationService returns one-shot device positions.
type LocationService interface {
	CurrentPosition(ctx context.Context, opts domain.LocationOptions) (domain.LocationFix, error)
}

// PlaceSearch is a place-autocomplete collaborator. Each waypoint channel
// owns one instance.
type PlaceSearch interface {
	Predict(ctx context.Context, q domain.PlaceQuery) ([]domain.PlacePrediction, error)
	Resolve(ctx context.Context, p domain.PlacePrediction) (*domain.PlaceSelection, error)
}

// DirectionsProvider computes driving routes.
type DirectionsProvider interface {
	Route(ctx context.Context, req domain.RouteRequest) (*domain.RouteResult, error)
}

// CameraSurface is the map view handle, available once the map reports ready.
type CameraSurface interface {
	AnimateToRegion(region domain.Region, duration time.Duration)
	FitToCoordinates(coords []domain.Coordinate, padding domain.EdgePadding, animated bool)
}

// EventPublisher publishes screen telemetry to a message broker.
type EventPublisher interface {
	PublishScreenEvent(ctx context.Context, evt *domain.ScreenEvent) error
}

// EventSubscriber consumes screen telemetry.
type EventSubscriber interface {
	SubscribeScreenEvents(ctx context.Context, handler func(ctx context.Context, evt *domain.ScreenEvent) error) error
}
