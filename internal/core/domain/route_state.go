package domain

// RouteState is the lifecycle of the route overlay.
type RouteState string

const (
	RouteIdle       RouteState = "idle"
	RouteRequesting RouteState = "requesting"
	RouteRendered   RouteState = "rendered"
	RouteErrored    RouteState = "errored"
)

// validRouteTransitions defines the overlay state machine. Any state may go
// back to idle when a waypoint is unset, and any state may start a new
// request when the waypoint pair changes.
var validRouteTransitions = map[RouteState][]RouteState{
	RouteIdle:       {RouteRequesting},
	RouteRequesting: {RouteRendered, RouteErrored, RouteRequesting, RouteIdle},
	RouteRendered:   {RouteRequesting, RouteIdle},
	RouteErrored:    {RouteRequesting, RouteIdle},
}

// CanTransitionTo returns true if moving from s to target is allowed.
func (s RouteState) CanTransitionTo(target RouteState) bool {
	for _, t := range validRouteTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsActive reports whether the overlay has a pair to show or fetch.
func (s RouteState) IsActive() bool {
	return s != RouteIdle
}

func (s RouteState) String() string {
	return string(s)
}
