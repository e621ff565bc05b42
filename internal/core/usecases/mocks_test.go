package usecases_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/usecases"
)

// --- Mock PermissionService ---

type mockPermission struct {
	prompt    bool
	requestFn func(ctx context.Context, kind domain.PermissionKind) (domain.PermissionState, error)
	calls     atomic.Int32
}

func (m *mockPermission) RequiresPrompt() bool { return m.prompt }

func (m *mockPermission) Request(ctx context.Context, kind domain.PermissionKind) (domain.PermissionState, error) {
	m.calls.Add(1)
	if m.requestFn != nil {
		return m.requestFn(ctx, kind)
	}
	return domain.PermissionGranted, nil
}

func granted() *mockPermission { return &mockPermission{prompt: true} }

// --- Mock LocationService ---

type mockLocation struct {
	positionFn func(ctx context.Context, opts domain.LocationOptions) (domain.LocationFix, error)
	calls      atomic.Int32
}

func (m *mockLocation) CurrentPosition(ctx context.Context, opts domain.LocationOptions) (domain.LocationFix, error) {
	m.calls.Add(1)
	if m.positionFn != nil {
		return m.positionFn(ctx, opts)
	}
	return domain.LocationFix{}, domain.ErrLocationUnavailable
}

func fixAt(c domain.Coordinate) *mockLocation {
	return &mockLocation{
		positionFn: func(ctx context.Context, opts domain.LocationOptions) (domain.LocationFix, error) {
			return domain.LocationFix{Coordinate: c, Timestamp: time.Now()}, nil
		},
	}
}

// heldFix returns c once release is closed.
func heldFix(c domain.Coordinate, release <-chan struct{}) *mockLocation {
	return &mockLocation{
		positionFn: func(ctx context.Context, opts domain.LocationOptions) (domain.LocationFix, error) {
			select {
			case <-release:
				return domain.LocationFix{Coordinate: c, Timestamp: time.Now()}, nil
			case <-ctx.Done():
				return domain.LocationFix{}, ctx.Err()
			}
		},
	}
}

// --- Mock PlaceSearch ---

type mockSearch struct {
	predictFn func(ctx context.Context, q domain.PlaceQuery) ([]domain.PlacePrediction, error)
	resolveFn func(ctx context.Context, p domain.PlacePrediction) (*domain.PlaceSelection, error)
}

func (m *mockSearch) Predict(ctx context.Context, q domain.PlaceQuery) ([]domain.PlacePrediction, error) {
	if m.predictFn != nil {
		return m.predictFn(ctx, q)
	}
	return nil, nil
}

func (m *mockSearch) Resolve(ctx context.Context, p domain.PlacePrediction) (*domain.PlaceSelection, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, p)
	}
	return nil, nil
}

// --- Mock DirectionsProvider ---

type mockDirections struct {
	routeFn func(ctx context.Context, req domain.RouteRequest) (*domain.RouteResult, error)

	mu       sync.Mutex
	requests []domain.RouteRequest
}

func (m *mockDirections) Route(ctx context.Context, req domain.RouteRequest) (*domain.RouteResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.routeFn != nil {
		return m.routeFn(ctx, req)
	}
	return &domain.RouteResult{Coordinates: []domain.Coordinate{req.Origin, req.Destination}}, nil
}

func (m *mockDirections) Requests() []domain.RouteRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.RouteRequest(nil), m.requests...)
}

// --- Recording CameraSurface ---

type move struct {
	region   domain.Region
	duration time.Duration
}

type fit struct {
	coords   []domain.Coordinate
	padding  domain.EdgePadding
	animated bool
}

type recordingSurface struct {
	mu    sync.Mutex
	moves []move
	fits  []fit
}

func (r *recordingSurface) AnimateToRegion(region domain.Region, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, move{region: region, duration: d})
}

func (r *recordingSurface) FitToCoordinates(coords []domain.Coordinate, padding domain.EdgePadding, animated bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fits = append(r.fits, fit{coords: coords, padding: padding, animated: animated})
}

func (r *recordingSurface) Moves() []move {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]move(nil), r.moves...)
}

func (r *recordingSurface) Fits() []fit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]fit(nil), r.fits...)
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.ScreenEvent
}

func (m *mockPublisher) PublishScreenEvent(ctx context.Context, evt *domain.ScreenEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *evt)
	return nil
}

func (m *mockPublisher) ofType(t domain.ScreenEventType) []domain.ScreenEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ScreenEvent
	for _, e := range m.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func selectionAt(id string, c domain.Coordinate) *domain.PlaceSelection {
	return &domain.PlaceSelection{PlaceID: id, Name: id, Geometry: &c}
}

// mount runs a screen until the test ends.
func mount(t *testing.T, deps usecases.Deps) *usecases.Screen {
	t.Helper()
	s := usecases.New(deps, usecases.DefaultScreenConfig(), discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func waitSettled(t *testing.T, s *usecases.Screen) {
	t.Helper()
	select {
	case <-s.Settled():
	case <-time.After(2 * time.Second):
		t.Fatal("permission never settled")
	}
}

func waitView(t *testing.T, s *usecases.Screen, cond func(domain.View) bool) domain.View {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		v, err := s.View(context.Background())
		if err != nil {
			t.Fatalf("view: %v", err)
		}
		if cond(v) {
			return v
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met, last view: %+v", v)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waypointMarkers(v domain.View) []domain.Marker {
	var out []domain.Marker
	for _, m := range v.Markers {
		if m.Title != "Current Location" {
			out = append(out, m)
		}
	}
	return out
}
