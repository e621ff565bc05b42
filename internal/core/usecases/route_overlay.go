package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/ports"
	"github.com/samirrijal/routeview/internal/pkg/metrics"
)

// RouteTicket identifies one directions request. A result is applied only
// while its ticket is the overlay's latest.
type RouteTicket struct {
	Seq     uint64
	Request domain.RouteRequest
}

// RouteOverlay tracks the route for the current waypoint pair. State is
// owned by the screen loop; Fetch alone runs off it.
type RouteOverlay struct {
	directions ports.DirectionsProvider
	style      domain.RouteStyle
	logger     *slog.Logger

	state  domain.RouteState
	pair   domain.Optional[domain.RoutePair]
	seq    uint64
	route  []domain.Coordinate
	result *domain.RouteResult
}

// NewRouteOverlay creates an idle overlay.
func NewRouteOverlay(directions ports.DirectionsProvider, style domain.RouteStyle, logger *slog.Logger) *RouteOverlay {
	if logger == nil {
		logger = slog.Default()
	}
	return &RouteOverlay{
		directions: directions,
		style:      style,
		logger:     logger,
		state:      domain.RouteIdle,
	}
}

// State returns the overlay state.
func (o *RouteOverlay) State() domain.RouteState { return o.state }

// Pair returns the pair last requested, unset while idle.
func (o *RouteOverlay) Pair() domain.Optional[domain.RoutePair] { return o.pair }

// Route returns the rendered polyline, nil unless Rendered.
func (o *RouteOverlay) Route() []domain.Coordinate { return o.route }

// Style returns the polyline style.
func (o *RouteOverlay) Style() domain.RouteStyle { return o.style }

// Result returns the last rendered route with its distance and duration.
func (o *RouteOverlay) Result() *domain.RouteResult { return o.result }

// Sync reconciles the overlay with the current waypoints. It returns a
// ticket when a new request must be issued: both waypoints are set and the
// pair differs from the one last requested. An unset waypoint returns the
// overlay to Idle and invalidates any request in flight.
func (o *RouteOverlay) Sync(origin, destination domain.Optional[domain.Coordinate]) (RouteTicket, bool) {
	orig, okO := origin.Get()
	dest, okD := destination.Get()
	if !okO || !okD {
		if o.state.IsActive() {
			o.seq++
			o.transition(domain.RouteIdle)
			o.pair = domain.None[domain.RoutePair]()
			o.clear()
		}
		return RouteTicket{}, false
	}

	p := domain.RoutePair{Origin: orig, Destination: dest}
	if last, ok := o.pair.Get(); ok && last == p {
		return RouteTicket{}, false
	}

	o.seq++
	o.transition(domain.RouteRequesting)
	o.pair = domain.Some(p)
	o.clear()

	return RouteTicket{
		Seq:     o.seq,
		Request: domain.RouteRequest{Origin: orig, Destination: dest, Style: o.style},
	}, true
}

// Fetch asks the directions provider for the ticket's route. It touches no
// overlay state and may run on any goroutine.
func (o *RouteOverlay) Fetch(ctx context.Context, t RouteTicket) (*domain.RouteResult, error) {
	start := time.Now()
	defer metrics.ObserveSince(metrics.RouteRequestDuration, start)

	res, err := o.directions.Route(ctx, t.Request)
	if err != nil {
		if errors.Is(err, domain.ErrRouteRequest) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRouteRequest, err)
	}
	if res == nil || len(res.Coordinates) == 0 {
		return nil, fmt.Errorf("%w: empty route", domain.ErrRouteRequest)
	}
	return res, nil
}

// Resolve applies a fetch outcome. A stale ticket is discarded and reported
// as ErrSuperseded. On failure the overlay stays Errored for this pair until
// the pair changes.
func (o *RouteOverlay) Resolve(t RouteTicket, res *domain.RouteResult, err error) (domain.RouteState, error) {
	if t.Seq != o.seq || o.state != domain.RouteRequesting {
		metrics.RouteRequests.WithLabelValues("discarded").Inc()
		return o.state, ErrSuperseded
	}
	if err == nil && (res == nil || len(res.Coordinates) == 0) {
		err = fmt.Errorf("%w: empty route", domain.ErrRouteRequest)
	}
	if err != nil {
		o.transition(domain.RouteErrored)
		metrics.RouteRequests.WithLabelValues("errored").Inc()
		return o.state, err
	}

	o.transition(domain.RouteRendered)
	o.route = res.Coordinates
	o.result = res
	metrics.RouteRequests.WithLabelValues("rendered").Inc()
	return o.state, nil
}

func (o *RouteOverlay) transition(target domain.RouteState) {
	if !o.state.CanTransitionTo(target) {
		o.logger.Warn("unexpected route transition", "from", o.state.String(), "to", target.String())
	}
	o.state = target
}

func (o *RouteOverlay) clear() {
	o.route = nil
	o.result = nil
}
