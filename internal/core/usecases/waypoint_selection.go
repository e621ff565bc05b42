package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/ports"
	"github.com/samirrijal/routeview/internal/pkg/metrics"
)

// WaypointSelection holds the origin and destination picked by the user.
// Each role is overwritten by its own channel; the two are never compared.
type WaypointSelection struct {
	origin      domain.Optional[domain.Coordinate]
	destination domain.Optional[domain.Coordinate]
}

// Set overwrites the coordinate for role.
func (w *WaypointSelection) Set(role domain.Role, c domain.Coordinate) {
	switch role {
	case domain.RoleSource:
		w.origin = domain.Some(c)
	case domain.RoleDestination:
		w.destination = domain.Some(c)
	}
}

// Get returns the coordinate for role.
func (w *WaypointSelection) Get(role domain.Role) domain.Optional[domain.Coordinate] {
	if role == domain.RoleSource {
		return w.origin
	}
	if role == domain.RoleDestination {
		return w.destination
	}
	return domain.None[domain.Coordinate]()
}

func (w *WaypointSelection) Origin() domain.Optional[domain.Coordinate] { return w.origin }

func (w *WaypointSelection) Destination() domain.Optional[domain.Coordinate] { return w.destination }

// Pair returns both waypoints when both are set.
func (w *WaypointSelection) Pair() (domain.RoutePair, bool) {
	o, okO := w.origin.Get()
	d, okD := w.destination.Get()
	if !okO || !okD {
		return domain.RoutePair{}, false
	}
	return domain.RoutePair{Origin: o, Destination: d}, true
}

// SelectionChannel is the place-search input feeding one waypoint role.
type SelectionChannel struct {
	role   domain.Role
	search ports.PlaceSearch
	screen *Screen
}

// Role returns the waypoint this channel sets.
func (c *SelectionChannel) Role() domain.Role {
	return c.role
}

// OnPlaceSelected applies a resolved place to the channel's waypoint,
// recenters the camera on it and re-evaluates the route. A selection
// without usable geometry fails this channel only.
func (c *SelectionChannel) OnPlaceSelected(ctx context.Context, sel *domain.PlaceSelection) error {
	return c.screen.applySelection(ctx, c.role, 0, sel)
}

// Search runs a free-text query through the channel's place-search
// collaborator and selects the first match. A newer search or selection on
// the same channel supersedes this one.
func (c *SelectionChannel) Search(ctx context.Context, input string) error {
	return c.screen.Search(ctx, c.role, input)
}

func validateSelection(sel *domain.PlaceSelection) (domain.Coordinate, error) {
	if sel == nil {
		return domain.Coordinate{}, fmt.Errorf("%w: empty selection", domain.ErrPlaceResolution)
	}
	if sel.Geometry == nil {
		return domain.Coordinate{}, fmt.Errorf("%w: place %q has no geometry", domain.ErrPlaceResolution, sel.PlaceID)
	}
	if !sel.Geometry.Valid() {
		return domain.Coordinate{}, fmt.Errorf("%w: place %q has invalid geometry %s", domain.ErrPlaceResolution, sel.PlaceID, sel.Geometry)
	}
	return *sel.Geometry, nil
}

// resolveFirst predicts with q and resolves the first prediction.
func resolveFirst(ctx context.Context, search ports.PlaceSearch, q domain.PlaceQuery) (*domain.PlaceSelection, error) {
	preds, err := search.Predict(ctx, q)
	if err != nil {
		return nil, wrapPlaceErr("predict", err)
	}
	if len(preds) == 0 {
		return nil, &domain.NoResultsError{Query: q.Input}
	}

	sel, err := search.Resolve(ctx, preds[0])
	if err != nil {
		return nil, wrapPlaceErr("resolve", err)
	}
	if sel != nil && sel.Name == "" {
		sel.Name = preds[0].Description
	}
	return sel, nil
}

func wrapPlaceErr(op string, err error) error {
	if errors.Is(err, domain.ErrPlaceResolution) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPlaceResolution, op, err)
}

func placeResult(err error) string {
	var noResults *domain.NoResultsError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &noResults):
		return "no_results"
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	default:
		return "failed"
	}
}

func countSelection(role domain.Role, err error) {
	metrics.PlaceSelections.WithLabelValues(string(role), placeResult(err)).Inc()
}
