package telemetry

// Span names for collaborator calls made by a screen.
const (
	SpanPermissionRequest = "permission.request"
	SpanLocationProbe     = "location.probe"
	SpanPlaceSearch       = "place.search"
	SpanRouteRequest      = "route.request"
)
