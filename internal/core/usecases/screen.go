package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/ports"
	"github.com/samirrijal/routeview/internal/pkg/metrics"
	"github.com/samirrijal/routeview/internal/pkg/telemetry"
)

var (
	// ErrSuperseded reports a result dropped because a newer request for the
	// same target was issued after it started.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrMapUnavailable is returned for map interactions while the screen
	// shows a permission message instead of the map.
	ErrMapUnavailable = errors.New("map is not displayed")
	// ErrScreenClosed is returned once the screen has been unmounted.
	ErrScreenClosed = errors.New("screen is not mounted")
)

// Deps are the collaborators a screen is mounted with.
type Deps struct {
	Permission        ports.PermissionService
	Location          ports.LocationService
	SourceSearch      ports.PlaceSearch
	DestinationSearch ports.PlaceSearch
	Directions        ports.DirectionsProvider
	// Publisher is optional.
	Publisher ports.EventPublisher
}

// ScreenConfig tunes a screen instance.
type ScreenConfig struct {
	Location      domain.LocationOptions
	Language      string
	Components    string
	MoveDuration  time.Duration
	RoutePadding  domain.EdgePadding
	RouteAnimated bool
	RouteStyle    domain.RouteStyle
	Viewport      domain.Viewport
}

// DefaultScreenConfig returns the stock map screen settings.
func DefaultScreenConfig() ScreenConfig {
	return ScreenConfig{
		Location:      domain.DefaultLocationOptions(),
		Language:      "en",
		Components:    "country:us",
		MoveDuration:  DefaultMoveDuration,
		RoutePadding:  domain.UniformPadding(50),
		RouteAnimated: true,
		RouteStyle:    domain.DefaultRouteStyle(),
		Viewport:      domain.Viewport{Width: 390, Height: 844},
	}
}

// Screen is one mounted map screen. All state is owned by the goroutine
// running Run; collaborator calls run elsewhere and post their results
// back as closures.
type Screen struct {
	id     uuid.UUID
	deps   Deps
	cfg    ScreenConfig
	logger *slog.Logger

	gate      *PermissionGate
	probe     *LocationProbe
	camera    *CameraController
	waypoints *WaypointSelection
	overlay   *RouteOverlay
	channels  map[domain.Role]*SelectionChannel

	ops     chan func()
	done    chan struct{}
	settled chan struct{}
	mounted atomic.Bool
	wg      sync.WaitGroup

	// Loop-owned.
	runCtx        context.Context
	userLocation  domain.Optional[domain.Coordinate]
	cameraTrigger uint64
	searchSeq     map[domain.Role]uint64
	probed        bool
	settledClosed bool
}

// New creates a screen with a fresh instance id. It does nothing until Run.
func New(deps Deps, cfg ScreenConfig, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MoveDuration <= 0 {
		cfg.MoveDuration = DefaultMoveDuration
	}
	if cfg.RouteStyle == (domain.RouteStyle{}) {
		cfg.RouteStyle = domain.DefaultRouteStyle()
	}

	id := uuid.New()
	logger = logger.With("screen_id", id.String())

	s := &Screen{
		id:        id,
		deps:      deps,
		cfg:       cfg,
		logger:    logger,
		gate:      NewPermissionGate(deps.Permission, logger),
		probe:     NewLocationProbe(deps.Location, cfg.Location, logger),
		camera:    NewCameraController(cfg.Viewport, logger),
		waypoints: &WaypointSelection{},
		overlay:   NewRouteOverlay(deps.Directions, cfg.RouteStyle, logger),
		ops:       make(chan func()),
		done:      make(chan struct{}),
		settled:   make(chan struct{}),
		searchSeq: make(map[domain.Role]uint64),
	}
	s.channels = map[domain.Role]*SelectionChannel{
		domain.RoleSource:      {role: domain.RoleSource, search: deps.SourceSearch, screen: s},
		domain.RoleDestination: {role: domain.RoleDestination, search: deps.DestinationSearch, screen: s},
	}
	return s
}

// ID returns the per-instance identifier attached to logs and events.
func (s *Screen) ID() uuid.UUID { return s.id }

// Channel returns the place-search channel for role, or nil for an unknown role.
func (s *Screen) Channel(role domain.Role) *SelectionChannel {
	return s.channels[role]
}

// Settled is closed once the permission state leaves Unknown.
func (s *Screen) Settled() <-chan struct{} { return s.settled }

// Run mounts the screen and serves its event loop until ctx is done.
// A screen can be mounted once.
func (s *Screen) Run(ctx context.Context) error {
	if !s.mounted.CompareAndSwap(false, true) {
		return errors.New("screen already mounted")
	}
	metrics.ActiveScreens.Inc()
	defer metrics.ActiveScreens.Dec()

	s.runCtx = ctx
	s.logger.Info("screen mounted", "prompt", s.gate.RequiresPrompt())
	s.mount(ctx)

	for {
		select {
		case <-ctx.Done():
			close(s.done)
			s.wg.Wait()
			s.logger.Info("screen unmounted")
			return nil
		case op := <-s.ops:
			op()
		}
	}
}

// AttachCamera installs the map surface once it reports ready. If the user
// location is already known the camera starts there.
func (s *Screen) AttachCamera(ctx context.Context, surface ports.CameraSurface) error {
	var err error
	doErr := s.do(ctx, func() {
		if s.gate.State() != domain.PermissionGranted {
			err = fmt.Errorf("%w: permission %s", ErrMapUnavailable, s.gate.State())
			return
		}
		replaced := s.camera.Attached()
		s.camera.Attach(surface)
		if c, ok := s.userLocation.Get(); ok {
			s.camera.MoveTo(c, 0)
		}
		s.logger.Debug("camera surface attached", "replaced", replaced)
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Search predicts places for input on role's channel and selects the first.
func (s *Screen) Search(ctx context.Context, role domain.Role, input string) error {
	ch, ok := s.channels[role]
	if !ok {
		return fmt.Errorf("unknown waypoint role: %q", role)
	}
	if ch.search == nil {
		return fmt.Errorf("%w: no place search for %s", domain.ErrPlaceResolution, role)
	}

	var ticket uint64
	var blocked error
	if err := s.do(ctx, func() {
		if blocked = s.mapErr(); blocked != nil {
			return
		}
		s.searchSeq[role]++
		ticket = s.searchSeq[role]
	}); err != nil {
		return err
	}
	if blocked != nil {
		return blocked
	}

	q := domain.PlaceQuery{Input: input, Language: s.cfg.Language, Components: s.cfg.Components}

	spanCtx, span := telemetry.StartSpan(ctx, telemetry.SpanPlaceSearch, s.id.String(),
		attribute.String("role", string(role)))
	sel, err := resolveFirst(spanCtx, ch.search, q)
	endSpan(span, err)

	if err != nil {
		_ = s.do(ctx, func() {
			if s.searchSeq[role] != ticket {
				err = ErrSuperseded
				return
			}
			s.placeFailed(role, err)
		})
		countSelection(role, err)
		return err
	}
	return s.applySelection(ctx, role, ticket, sel)
}

// DragCurrentLocation records a drag of the current-location marker. The
// marker position and UserLocation are left unchanged.
func (s *Screen) DragCurrentLocation(ctx context.Context, c domain.Coordinate) error {
	return s.do(ctx, func() {
		s.logger.Info("current location marker dragged", "latitude", c.Latitude, "longitude", c.Longitude)
		s.emit(domain.ScreenEvent{Type: domain.EventMarkerDragged, Coordinate: &c})
	})
}

// View returns a snapshot of what the screen renders.
func (s *Screen) View(ctx context.Context) (domain.View, error) {
	var v domain.View
	err := s.do(ctx, func() { v = s.view() })
	return v, err
}

// RouteResult returns the rendered route with distance and duration, or nil.
func (s *Screen) RouteResult(ctx context.Context) (*domain.RouteResult, error) {
	var res *domain.RouteResult
	err := s.do(ctx, func() { res = s.overlay.Result() })
	return res, err
}

func (s *Screen) mount(ctx context.Context) {
	if s.gate.RequiresPrompt() {
		s.spawn(func() {
			spanCtx, span := telemetry.StartSpan(ctx, telemetry.SpanPermissionRequest, s.id.String())
			state, err := s.gate.Request(spanCtx)
			endSpan(span, err)
			s.post(func() { s.onPermission(state, err) })
		})
		return
	}
	// No prompt on this platform: the first probe doubles as consent.
	s.startProbe(ctx)
}

func (s *Screen) onPermission(state domain.PermissionState, err error) {
	s.permissionSettled(err)
	if state == domain.PermissionGranted {
		s.startProbe(s.runCtx)
	}
}

func (s *Screen) permissionSettled(err error) {
	outcome := s.gate.Outcome()
	evt := domain.ScreenEvent{Type: domain.EventPermissionResolved, Outcome: outcome}
	switch outcome {
	case domain.OutcomeServiceError:
		s.logger.Error("location permission unavailable", "error", err)
		evt.Error = errString(err)
	case domain.OutcomeDenied:
		s.logger.Warn("location permission denied")
	}
	s.emit(evt)

	if !s.settledClosed {
		s.settledClosed = true
		close(s.settled)
	}
}

func (s *Screen) startProbe(ctx context.Context) {
	if s.probed {
		return
	}
	s.probed = true
	trigger := s.cameraTrigger

	s.spawn(func() {
		spanCtx, span := telemetry.StartSpan(ctx, telemetry.SpanLocationProbe, s.id.String(),
			attribute.String("accuracy", string(s.probe.Options().Accuracy)))
		fix, err := s.probe.Probe(spanCtx)
		endSpan(span, err)
		s.post(func() { s.onFix(trigger, fix, err) })
	})
}

func (s *Screen) onFix(trigger uint64, fix domain.LocationFix, err error) {
	if s.gate.State() == domain.PermissionUnknown {
		s.gate.Observe(err)
		s.permissionSettled(err)
	}
	if s.gate.State() != domain.PermissionGranted {
		return
	}

	if err != nil {
		s.logger.Warn("location probe failed", "error", err)
		s.emit(domain.ScreenEvent{Type: domain.EventLocationFailed, Error: err.Error()})
		return
	}

	c := fix.Coordinate
	s.userLocation = domain.Some(c)
	s.logger.Info("user location fixed", "latitude", c.Latitude, "longitude", c.Longitude,
		"accuracy_m", fix.AccuracyMeters)
	s.emit(domain.ScreenEvent{Type: domain.EventLocationFixed, Coordinate: &c})

	if s.cameraTrigger != trigger {
		s.logger.Debug("camera move from location fix superseded", "trigger", trigger, "latest", s.cameraTrigger)
		return
	}
	s.moveCamera(c)
}

// applySelection validates sel and applies it to role. ticket is the search
// sequence that produced it, or 0 for a direct selection.
func (s *Screen) applySelection(ctx context.Context, role domain.Role, ticket uint64, sel *domain.PlaceSelection) error {
	if !role.IsValid() {
		return fmt.Errorf("unknown waypoint role: %q", role)
	}
	coord, verr := validateSelection(sel)

	var err error
	doErr := s.do(ctx, func() {
		if err = s.mapErr(); err != nil {
			return
		}
		if ticket != 0 && s.searchSeq[role] != ticket {
			err = ErrSuperseded
			return
		}
		if verr != nil {
			err = verr
			s.placeFailed(role, err)
			return
		}
		// Only a usable direct selection supersedes a search in flight.
		if ticket == 0 {
			s.searchSeq[role]++
		}

		s.waypoints.Set(role, coord)
		s.logger.Info("place selected", "role", role, "place_id", sel.PlaceID, "name", sel.Name,
			"latitude", coord.Latitude, "longitude", coord.Longitude)
		s.emit(domain.ScreenEvent{Type: domain.EventPlaceSelected, Role: role, Coordinate: &coord})

		s.moveCamera(coord)
		s.syncRoute()
	})
	if doErr != nil {
		return doErr
	}
	countSelection(role, err)
	return err
}

func (s *Screen) placeFailed(role domain.Role, err error) {
	s.logger.Warn("place selection failed", "role", role, "error", err)
	s.emit(domain.ScreenEvent{Type: domain.EventPlaceFailed, Role: role, Error: err.Error()})
}

func (s *Screen) syncRoute() {
	ticket, ok := s.overlay.Sync(s.waypoints.Origin(), s.waypoints.Destination())
	if !ok {
		return
	}
	s.logger.Info("requesting route",
		"origin", ticket.Request.Origin.String(), "destination", ticket.Request.Destination.String())

	ctx := s.runCtx
	s.spawn(func() {
		spanCtx, span := telemetry.StartSpan(ctx, telemetry.SpanRouteRequest, s.id.String(),
			attribute.String("origin", ticket.Request.Origin.String()),
			attribute.String("destination", ticket.Request.Destination.String()))
		res, err := s.overlay.Fetch(spanCtx, ticket)
		endSpan(span, err)
		s.post(func() { s.onRoute(ticket, res, err) })
	})
}

func (s *Screen) onRoute(ticket RouteTicket, res *domain.RouteResult, err error) {
	_, rerr := s.overlay.Resolve(ticket, res, err)
	switch {
	case errors.Is(rerr, ErrSuperseded):
		s.logger.Debug("route result discarded", "seq", ticket.Seq)
	case rerr != nil:
		s.logger.Warn("route request failed", "error", rerr)
		s.emit(domain.ScreenEvent{Type: domain.EventRouteFailed, Error: rerr.Error()})
	default:
		route := s.overlay.Route()
		s.logger.Info("route rendered", "points", len(route),
			"distance_m", res.DistanceMeters, "duration", res.Duration)
		s.emit(domain.ScreenEvent{Type: domain.EventRouteRendered})
		s.cameraTrigger++
		s.camera.FitToBounds(route, s.cfg.RoutePadding, s.cfg.RouteAnimated)
	}
}

func (s *Screen) moveCamera(c domain.Coordinate) {
	s.cameraTrigger++
	s.camera.MoveTo(c, s.cfg.MoveDuration)
}

func (s *Screen) mapErr() error {
	switch st := s.gate.State(); st {
	case domain.PermissionGranted:
		return nil
	case domain.PermissionDenied:
		return fmt.Errorf("%w: %w", ErrMapUnavailable, domain.ErrPermissionDenied)
	default:
		return fmt.Errorf("%w: permission %s", ErrMapUnavailable, st)
	}
}

func (s *Screen) view() domain.View {
	v := domain.View{
		ScreenID:     s.id,
		Permission:   s.gate.State(),
		UserLocation: s.userLocation,
		Origin:       s.waypoints.Origin(),
		Destination:  s.waypoints.Destination(),
		RouteState:   s.overlay.State(),
		RouteStyle:   s.overlay.Style(),
	}
	switch v.Permission {
	case domain.PermissionUnknown:
		v.Blocked = true
		v.Message = domain.MessageAwaitingPermission
		return v
	case domain.PermissionDenied:
		v.Blocked = true
		v.Message = domain.MessagePermissionRequired
		return v
	}

	v.Markers = append(v.Markers, domain.Marker{
		Title:      "Current Location",
		Coordinate: s.userLocation.OrElse(domain.FallbackCoordinate),
		Draggable:  true,
	})
	if c, ok := s.waypoints.Origin().Get(); ok {
		v.Markers = append(v.Markers, domain.Marker{Title: "Source", Coordinate: c})
	}
	if c, ok := s.waypoints.Destination().Get(); ok {
		v.Markers = append(v.Markers, domain.Marker{Title: "Destination", Coordinate: c})
	}
	if v.RouteState == domain.RouteRendered {
		v.Route = append([]domain.Coordinate(nil), s.overlay.Route()...)
	}
	v.Region = s.camera.Region()
	return v
}

func (s *Screen) emit(evt domain.ScreenEvent) {
	if s.deps.Publisher == nil {
		return
	}
	evt.ID = uuid.New()
	evt.ScreenID = s.id
	evt.Time = time.Now()

	ctx := s.runCtx
	s.spawn(func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.deps.Publisher.PublishScreenEvent(pubCtx, &evt); err != nil {
			s.logger.Warn("publish screen event", "type", evt.Type, "error", err)
		}
	})
}

// spawn runs fn off the loop. Run waits for spawned work before returning.
func (s *Screen) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// post hands fn to the loop. It is dropped once the screen is unmounted.
func (s *Screen) post(fn func()) {
	select {
	case s.ops <- fn:
	case <-s.done:
	}
}

// do runs fn on the loop and waits for it to finish.
func (s *Screen) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn()
	}

	select {
	case s.ops <- op:
	case <-s.done:
		return ErrScreenClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	<-finished
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
