package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/ports"
	"github.com/samirrijal/routeview/internal/core/usecases"
)

// Script is a scripted user session replayed against a mounted screen.
type Script struct {
	SettleTimeout duration `toml:"settle_timeout"`
	Output        string   `toml:"output"`
	Steps         []Step   `toml:"step"`
}

// Step is one user action. Action is search, select, drag or wait.
type Step struct {
	Action    string      `toml:"action"`
	Role      domain.Role `toml:"role"`
	Query     string      `toml:"query"`
	Name      string      `toml:"name"`
	Latitude  float64     `toml:"latitude"`
	Longitude float64     `toml:"longitude"`
	For       string      `toml:"for"` // route, location, or empty for a plain pause
	Duration  duration    `toml:"duration"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// LoadScript decodes a TOML session script.
func LoadScript(path string) (*Script, error) {
	var s Script
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown script keys: %v", undecoded)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every step before anything runs.
func (s *Script) Validate() error {
	if s.SettleTimeout.Duration <= 0 {
		s.SettleTimeout.Duration = 20 * time.Second
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "search":
			if !st.Role.IsValid() || st.Query == "" {
				return fmt.Errorf("step %d: search needs a role and a query", i+1)
			}
		case "select":
			c := domain.Coordinate{Latitude: st.Latitude, Longitude: st.Longitude}
			if !st.Role.IsValid() || !c.Valid() {
				return fmt.Errorf("step %d: select needs a role and a valid coordinate", i+1)
			}
		case "drag":
		case "wait":
			if st.For != "" && st.For != "route" && st.For != "location" {
				return fmt.Errorf("step %d: cannot wait for %q", i+1, st.For)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, st.Action)
		}
	}
	return nil
}

// Run replays the steps. Place failures are logged and the session goes
// on, as a user would keep using the screen.
func (s *Script) Run(ctx context.Context, screen *usecases.Screen, logger *slog.Logger) error {
	for i, st := range s.Steps {
		log := logger.With("step", i+1, "action", st.Action)

		var err error
		switch st.Action {
		case "search":
			err = screen.Search(ctx, st.Role, st.Query)
		case "select":
			c := domain.Coordinate{Latitude: st.Latitude, Longitude: st.Longitude}
			err = screen.Channel(st.Role).OnPlaceSelected(ctx, &domain.PlaceSelection{Name: st.Name, Geometry: &c})
		case "drag":
			err = screen.DragCurrentLocation(ctx, domain.Coordinate{Latitude: st.Latitude, Longitude: st.Longitude})
		case "wait":
			err = wait(ctx, screen, st)
		}

		switch {
		case err == nil:
			log.Debug("step done")
		case errors.Is(err, domain.ErrPlaceResolution), errors.Is(err, usecases.ErrSuperseded),
			errors.Is(err, usecases.ErrMapUnavailable):
			log.Warn("step failed", "error", err)
		default:
			return fmt.Errorf("step %d (%s): %w", i+1, st.Action, err)
		}
	}
	return nil
}

// runSession waits for the permission flow to settle, attaches the surface
// when the map is shown and replays the script. It returns what the screen
// renders at the end.
func runSession(ctx context.Context, screen *usecases.Screen, surface ports.CameraSurface, s *Script, logger *slog.Logger) (domain.View, *domain.RouteResult, error) {
	settle := time.NewTimer(s.SettleTimeout.Duration)
	defer settle.Stop()

	select {
	case <-screen.Settled():
	case <-settle.C:
		return domain.View{}, nil, fmt.Errorf("permission did not settle within %s", s.SettleTimeout.Duration)
	case <-ctx.Done():
		return domain.View{}, nil, ctx.Err()
	}

	if err := screen.AttachCamera(ctx, surface); err != nil {
		if !errors.Is(err, usecases.ErrMapUnavailable) {
			return domain.View{}, nil, err
		}
		logger.Warn("map not shown", "error", err)
	}

	if err := s.Run(ctx, screen, logger); err != nil {
		return domain.View{}, nil, err
	}

	view, err := screen.View(ctx)
	if err != nil {
		return domain.View{}, nil, err
	}
	route, err := screen.RouteResult(ctx)
	if err != nil {
		return domain.View{}, nil, err
	}
	return view, route, nil
}

func wait(ctx context.Context, screen *usecases.Screen, st Step) error {
	timeout := st.Duration.Duration
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if st.For == "" {
		return sleep(ctx, timeout)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		v, err := screen.View(ctx)
		if err != nil {
			return err
		}
		switch st.For {
		case "route":
			if v.RouteState == domain.RouteRendered || v.RouteState == domain.RouteErrored {
				return nil
			}
		case "location":
			if v.UserLocation.IsSet() {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", st.For, ctx.Err())
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
