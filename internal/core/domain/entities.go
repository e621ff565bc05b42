package domain

import (
	"time"

	"github.com/google/uuid"
)

// FallbackCoordinate positions the current-location marker before any fix
// is known. It is never used as a camera target.
var FallbackCoordinate = Coordinate{Latitude: 33.195682, Longitude: -97.126790}

// User-facing messages shown in place of the map.
const (
	MessageAwaitingPermission = "Please allow location permission to continue..."
	MessagePermissionRequired = "Location permission is required to show your current location on the map."
)

// PermissionState is the screen's location authorization.
type PermissionState int

const (
	PermissionUnknown PermissionState = iota
	PermissionGranted
	PermissionDenied
)

func (s PermissionState) String() string {
	switch s {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// PermissionKind identifies the OS permission being requested.
type PermissionKind string

const PermissionFineLocation PermissionKind = "fine_location"

// PermissionOutcome separates a service failure from a user denial for telemetry.
type PermissionOutcome string

const (
	OutcomeGranted      PermissionOutcome = "granted"
	OutcomeDenied       PermissionOutcome = "denied"
	OutcomeServiceError PermissionOutcome = "service_error"
)

// AccuracyMode selects the location provider precision.
type AccuracyMode string

const (
	AccuracyHigh AccuracyMode = "high"
	AccuracyLow  AccuracyMode = "low"
)

// IsValid checks if the accuracy mode is known.
func (m AccuracyMode) IsValid() bool {
	return m == AccuracyHigh || m == AccuracyLow
}

// LocationOptions configures a one-shot location request.
type LocationOptions struct {
	Accuracy     AccuracyMode
	Timeout      time.Duration
	MaxCachedAge time.Duration
}

// DefaultLocationOptions returns high accuracy, a 15s timeout and a 10s staleness limit.
func DefaultLocationOptions() LocationOptions {
	return LocationOptions{
		Accuracy:     AccuracyHigh,
		Timeout:      15 * time.Second,
		MaxCachedAge: 10 * time.Second,
	}
}

// LocationFix is a position reported by the device location service.
type LocationFix struct {
	Coordinate     Coordinate `json:"coordinate"`
	Timestamp      time.Time  `json:"timestamp"`
	AccuracyMeters float64    `json:"accuracy_meters,omitempty"`
}

// Role is the waypoint a place-search channel feeds.
type Role string

const (
	RoleSource      Role = "source"
	RoleDestination Role = "destination"
)

// IsValid checks if the role is one of the two channels.
func (r Role) IsValid() bool {
	return r == RoleSource || r == RoleDestination
}

// PlaceQuery is a free-text search issued by a place-search channel.
type PlaceQuery struct {
	Input      string
	Language   string
	Components string // e.g. "country:us"
}

// PlacePrediction is one autocomplete candidate.
type PlacePrediction struct {
	PlaceID     string
	Description string
	// Location is set when the provider returns geometry with the prediction.
	Location Optional[Coordinate]
}

// PlaceSelection is a resolved place. A nil Geometry makes it malformed.
type PlaceSelection struct {
	PlaceID  string      `json:"place_id,omitempty"`
	Name     string      `json:"name,omitempty"`
	Address  string      `json:"address,omitempty"`
	Geometry *Coordinate `json:"geometry"`
}

// RouteStyle is how the route polyline is drawn.
type RouteStyle struct {
	StrokeWidth int    `json:"stroke_width"`
	StrokeColor string `json:"stroke_color"`
}

// DefaultRouteStyle is a 4px blue line.
func DefaultRouteStyle() RouteStyle {
	return RouteStyle{StrokeWidth: 4, StrokeColor: "blue"}
}

// RoutePair keys the route overlay.
type RoutePair struct {
	Origin      Coordinate `json:"origin"`
	Destination Coordinate `json:"destination"`
}

// RouteRequest is sent to the directions provider.
type RouteRequest struct {
	Origin      Coordinate
	Destination Coordinate
	Style       RouteStyle
}

// RouteResult is a resolved driving route. It is held only long enough to
// render and fit the camera.
type RouteResult struct {
	Coordinates    []Coordinate  `json:"coordinates"`
	Bounds         Bounds        `json:"bounds"`
	DistanceMeters int           `json:"distance_meters"`
	Duration       time.Duration `json:"duration"`
}

// ScreenEventType names a telemetry event.
type ScreenEventType string

const (
	EventPermissionResolved ScreenEventType = "permission_resolved"
	EventLocationFixed      ScreenEventType = "location_fixed"
	EventLocationFailed     ScreenEventType = "location_failed"
	EventPlaceSelected      ScreenEventType = "place_selected"
	EventPlaceFailed        ScreenEventType = "place_failed"
	EventRouteRendered      ScreenEventType = "route_rendered"
	EventRouteFailed        ScreenEventType = "route_failed"
	EventMarkerDragged      ScreenEventType = "marker_dragged"
)

// ScreenEvent is a telemetry record emitted by a mounted screen.
type ScreenEvent struct {
	ID         uuid.UUID         `json:"id"`
	ScreenID   uuid.UUID         `json:"screen_id"`
	Type       ScreenEventType   `json:"type"`
	Role       Role              `json:"role,omitempty"`
	Coordinate *Coordinate       `json:"coordinate,omitempty"`
	Outcome    PermissionOutcome `json:"outcome,omitempty"`
	Error      string            `json:"error,omitempty"`
	Time       time.Time         `json:"time"`
}

// Marker is a pin on the map.
type Marker struct {
	Title      string     `json:"title"`
	Coordinate Coordinate `json:"coordinate"`
	Draggable  bool       `json:"draggable,omitempty"`
}

// View is what the screen currently renders. When Blocked is set only
// Message is shown and no map surface exists.
type View struct {
	ScreenID     uuid.UUID            `json:"screen_id"`
	Permission   PermissionState      `json:"permission"`
	Blocked      bool                 `json:"blocked"`
	Message      string               `json:"message,omitempty"`
	UserLocation Optional[Coordinate] `json:"user_location"`
	Origin       Optional[Coordinate] `json:"origin"`
	Destination  Optional[Coordinate] `json:"destination"`
	Markers      []Marker             `json:"markers,omitempty"`
	RouteState   RouteState           `json:"route_state"`
	Route        []Coordinate         `json:"route,omitempty"`
	RouteStyle   RouteStyle           `json:"route_style"`
	Region       Optional[Region]     `json:"region"`
}
