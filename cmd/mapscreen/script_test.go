package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/routeview/internal/adapters/device"
	"github.com/samirrijal/routeview/internal/adapters/headless"
	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/usecases"
)

const scenario = `
settle_timeout = "2s"
output = "-"

[[step]]
action = "search"
role = "source"
query = "Denton Square"

[[step]]
action = "select"
role = "destination"
name = "Lake Lewisville"
latitude = 33.10
longitude = -97.00

[[step]]
action = "wait"
for = "route"
duration = "2s"

[[step]]
action = "drag"
latitude = 33.3
longitude = -97.3
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadScript(t *testing.T) {
	s, err := LoadScript(writeScript(t, scenario))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, s.SettleTimeout.Duration)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, domain.RoleSource, s.Steps[0].Role)
	assert.Equal(t, "Denton Square", s.Steps[0].Query)
	assert.Equal(t, 33.10, s.Steps[1].Latitude)
	assert.Equal(t, "route", s.Steps[2].For)
}

func TestLoadScriptRejectsUnknownKeys(t *testing.T) {
	_, err := LoadScript(writeScript(t, "[[step]]\naction = \"drag\"\ncolour = \"red\"\n"))
	assert.ErrorContains(t, err, "unknown script keys")
}

func TestScriptValidate(t *testing.T) {
	tests := []struct {
		name string
		step Step
		ok   bool
	}{
		{"search", Step{Action: "search", Role: domain.RoleSource, Query: "x"}, true},
		{"search without query", Step{Action: "search", Role: domain.RoleSource}, false},
		{"search bad role", Step{Action: "search", Role: "via", Query: "x"}, false},
		{"select", Step{Action: "select", Role: domain.RoleDestination, Latitude: 1, Longitude: 2}, true},
		{"select out of range", Step{Action: "select", Role: domain.RoleDestination, Latitude: 91}, false},
		{"wait for route", Step{Action: "wait", For: "route"}, true},
		{"wait for nothing known", Step{Action: "wait", For: "traffic"}, false},
		{"unknown action", Step{Action: "zoom"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Script{Steps: []Step{tt.step}}
			err := s.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

type stubSearch struct {
	at domain.Coordinate
}

func (s stubSearch) Predict(ctx context.Context, q domain.PlaceQuery) ([]domain.PlacePrediction, error) {
	return []domain.PlacePrediction{{PlaceID: "p1", Description: q.Input}}, nil
}

func (s stubSearch) Resolve(ctx context.Context, p domain.PlacePrediction) (*domain.PlaceSelection, error) {
	c := s.at
	return &domain.PlaceSelection{PlaceID: p.PlaceID, Name: p.Description, Geometry: &c}, nil
}

type straightLine struct{}

func (straightLine) Route(ctx context.Context, req domain.RouteRequest) (*domain.RouteResult, error) {
	coords := []domain.Coordinate{req.Origin, req.Destination}
	b, _ := domain.BoundsOf(coords)
	return &domain.RouteResult{Coordinates: coords, Bounds: b, DistanceMeters: 15000, Duration: 12 * time.Minute}, nil
}

func TestRunSession(t *testing.T) {
	s, err := LoadScript(writeScript(t, scenario))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := usecases.DefaultScreenConfig()
	screen := usecases.New(usecases.Deps{
		Permission:        &device.StaticPermission{Prompt: true, Decision: domain.PermissionGranted},
		Location:          &device.StaticLocation{Fix: domain.Coordinate{Latitude: 33.2, Longitude: -97.1}},
		SourceSearch:      stubSearch{at: domain.Coordinate{Latitude: 33.21, Longitude: -97.13}},
		DestinationSearch: stubSearch{},
		Directions:        straightLine{},
	}, cfg, logger)
	surface := headless.NewSurface(cfg.Viewport)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = screen.Run(ctx)
	}()

	view, route, err := runSession(ctx, screen, surface, s, logger)
	require.NoError(t, err)

	assert.Equal(t, domain.RouteRendered, view.RouteState)
	require.NotNil(t, route)
	assert.Equal(t, 15000, route.DistanceMeters)

	ops := surface.Operations()
	require.NotEmpty(t, ops)
	assert.Equal(t, headless.OpFit, ops[len(ops)-1].Kind)

	out, err := headless.Render(view)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"route_state":"rendered"`)

	cancel()
	<-done
}
