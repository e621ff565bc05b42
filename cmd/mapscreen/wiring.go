package main

import (
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/samirrijal/routeview/internal/adapters/autocomplete"
	"github.com/samirrijal/routeview/internal/adapters/device"
	"github.com/samirrijal/routeview/internal/adapters/googlemaps"
	"github.com/samirrijal/routeview/internal/adapters/nominatim"
	"github.com/samirrijal/routeview/internal/adapters/valhalla"
	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/ports"
	"github.com/samirrijal/routeview/internal/core/usecases"
	"github.com/samirrijal/routeview/internal/pkg/config"
)

// screenConfig maps the screen section onto the use-case settings.
func screenConfig(c config.ScreenConfig) usecases.ScreenConfig {
	sc := usecases.DefaultScreenConfig()
	sc.Location = domain.LocationOptions{
		Accuracy:     domain.AccuracyMode(c.Accuracy),
		Timeout:      c.LocationTimeout,
		MaxCachedAge: c.MaxCachedAge,
	}
	sc.Language = c.Language
	sc.Components = c.Components
	sc.MoveDuration = c.MoveDuration
	sc.RoutePadding = domain.UniformPadding(c.RoutePadding)
	sc.RouteStyle = domain.RouteStyle{StrokeWidth: c.StrokeWidth, StrokeColor: c.StrokeColor}
	sc.Viewport = domain.Viewport{Width: c.ViewportWidth, Height: c.ViewportHeight}
	return sc
}

// deviceServices builds the stand-in permission and location services.
func deviceServices(c config.DeviceConfig) (*device.StaticPermission, *device.StaticLocation, error) {
	perm := &device.StaticPermission{Prompt: c.Prompt}
	switch c.Permission {
	case "granted":
		perm.Decision = domain.PermissionGranted
	case "denied":
		perm.Decision = domain.PermissionDenied
	case "error":
		perm.Err = fmt.Errorf("permission dialog unavailable")
	default:
		return nil, nil, fmt.Errorf("device.permission must be granted, denied or error, got %q", c.Permission)
	}

	failure := device.FailureMode(c.LocationFailure)
	if !failure.IsValid() {
		return nil, nil, fmt.Errorf("device.location_failure %q is not a known failure mode", c.LocationFailure)
	}
	loc := &device.StaticLocation{
		Fix:     domain.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude},
		Delay:   c.FixDelay,
		Age:     c.FixAge,
		Failure: failure,
	}
	return perm, loc, nil
}

// providers builds the place-search channels and the directions provider.
// Each channel gets its own debouncer so typing in one field never cancels
// a lookup in the other.
func providers(cfg *config.Config) (source, destination ports.PlaceSearch, dirs ports.DirectionsProvider, err error) {
	var places ports.PlaceSearch
	var google *maps.Client

	if cfg.Providers.Places == "google" || cfg.Providers.Directions == "google" {
		client, err := googlemaps.NewClient(googlemaps.Config{
			APIKey:  cfg.Google.APIKey,
			BaseURL: cfg.Google.BaseURL,
			Timeout: cfg.Google.Timeout,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("google maps client: %w", err)
		}
		if cfg.Providers.Directions == "google" {
			dirs = googlemaps.NewDirections(client, cfg.Screen.Language)
		}
		if cfg.Providers.Places == "google" {
			google = client
		}
	}

	if cfg.Providers.Places == "osm" {
		places = nominatim.New(nominatim.Config{
			BaseURL:   cfg.Nominatim.URL,
			UserAgent: cfg.Nominatim.UserAgent,
			Timeout:   cfg.Nominatim.Timeout,
		})
	}
	if cfg.Providers.Directions == "osm" {
		dirs = valhalla.New(valhalla.Config{
			BaseURL: cfg.Valhalla.URL,
			Timeout: cfg.Valhalla.Timeout,
		})
	}

	// Google autocomplete sessions are per field.
	newPlaces := func() ports.PlaceSearch {
		if google != nil {
			return googlemaps.NewPlaces(google)
		}
		return places
	}

	source = autocomplete.NewDebounced(newPlaces(), cfg.Screen.Debounce)
	destination = autocomplete.NewDebounced(newPlaces(), cfg.Screen.Debounce)
	return source, destination, dirs, nil
}
