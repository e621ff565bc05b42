package valhalla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/pkg/geospatial"
)

// Config holds Valhalla settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.DirectionsProvider with Valhalla's /route
// endpoint using auto costing.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new Valhalla client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{baseURL: strings.TrimRight(cfg.BaseURL, "/"), http: &http.Client{Timeout: timeout}}
}

type location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Type string  `json:"type"`
}

type routeRequest struct {
	Locations   []location `json:"locations"`
	Costing     string     `json:"costing"`
	Units       string     `json:"units"`
	ShapeFormat string     `json:"shape_format"`
}

type leg struct {
	Shape string `json:"shape"`
}

type routeResponse struct {
	Trip struct {
		Status        int    `json:"status"`
		StatusMessage string `json:"status_message"`
		Legs          []leg  `json:"legs"`
		Summary       struct {
			Time   float64 `json:"time"`   // seconds
			Length float64 `json:"length"` // kilometers
		} `json:"summary"`
	} `json:"trip"`
}

type errorResponse struct {
	ErrorCode int    `json:"error_code"`
	Error     string `json:"error"`
}

func (c *Client) Route(ctx context.Context, req domain.RouteRequest) (*domain.RouteResult, error) {
	body, err := json.Marshal(routeRequest{
		Locations: []location{
			{Lat: req.Origin.Latitude, Lon: req.Origin.Longitude, Type: "break"},
			{Lat: req.Destination.Latitude, Lon: req.Destination.Longitude, Type: "break"},
		},
		Costing: "auto",
		Units:   "kilometers",
		// Precision 5 matches the Google encoding so one decoder serves both.
		ShapeFormat: "polyline5",
	})
	if err != nil {
		return nil, fmt.Errorf("encode valhalla request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/route", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRouteRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: valhalla: %w", domain.ErrRouteRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read valhalla response: %w", domain.ErrRouteRequest, err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("%w: valhalla %d: %s", domain.ErrRouteRequest, e.ErrorCode, e.Error)
		}
		return nil, fmt.Errorf("%w: valhalla returned status: %d", domain.ErrRouteRequest, resp.StatusCode)
	}

	var vr routeResponse
	if err := json.Unmarshal(data, &vr); err != nil {
		return nil, fmt.Errorf("%w: decode valhalla response: %w", domain.ErrRouteRequest, err)
	}
	if vr.Trip.Status != 0 {
		return nil, fmt.Errorf("%w: valhalla trip status %d: %s", domain.ErrRouteRequest, vr.Trip.Status, vr.Trip.StatusMessage)
	}

	var coords []domain.Coordinate
	for _, l := range vr.Trip.Legs {
		pts, err := maps.DecodePolyline(l.Shape)
		if err != nil {
			return nil, fmt.Errorf("%w: decode shape: %w", domain.ErrRouteRequest, err)
		}
		for _, p := range pts {
			c := domain.Coordinate{Latitude: p.Lat, Longitude: p.Lng}
			// Consecutive legs share their joining point.
			if n := len(coords); n > 0 && coords[n-1] == c {
				continue
			}
			coords = append(coords, c)
		}
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: valhalla returned an empty shape", domain.ErrRouteRequest)
	}

	bounds, _ := domain.BoundsOf(coords)
	meters := int(vr.Trip.Summary.Length * 1000)
	if meters == 0 {
		meters = int(geospatial.PathLength(coords))
	}

	return &domain.RouteResult{
		Coordinates:    coords,
		Bounds:         bounds,
		DistanceMeters: meters,
		Duration:       time.Duration(vr.Trip.Summary.Time * float64(time.Second)),
	}, nil
}
