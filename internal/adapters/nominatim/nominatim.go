package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/routeview/internal/core/domain"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Config holds Nominatim settings. The public instance requires an
// identifying User-Agent.
type Config struct {
	BaseURL   string
	UserAgent string
	Limit     int
	Timeout   time.Duration
}

// Client implements ports.PlaceSearch against an OpenStreetMap Nominatim
// server. Search results already carry coordinates, so Resolve only calls
// the server for predictions that lack them.
type Client struct {
	baseURL   string
	userAgent string
	limit     int
	http      *http.Client
}

// New creates a new Nominatim client.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "routeview/1.0"
	}
	return &Client{baseURL: base, userAgent: ua, limit: limit, http: &http.Client{Timeout: timeout}}
}

type address struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
	PostCode    string `json:"postcode"`
}

type place struct {
	OSMType     string  `json:"osm_type"`
	OSMID       int64   `json:"osm_id"`
	DisplayName string  `json:"display_name"`
	Name        string  `json:"name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     address `json:"address"`
}

func (c *Client) Predict(ctx context.Context, q domain.PlaceQuery) ([]domain.PlacePrediction, error) {
	if strings.TrimSpace(q.Input) == "" {
		return nil, nil
	}

	params := url.Values{
		"q":              {q.Input},
		"format":         {"jsonv2"},
		"limit":          {strconv.Itoa(c.limit)},
		"addressdetails": {"1"},
	}
	if codes := countryCodes(q.Components); codes != "" {
		params.Set("countrycodes", codes)
	}

	var results []place
	if err := c.get(ctx, "/search", params, q.Language, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, &domain.NoResultsError{Query: q.Input}
	}

	preds := make([]domain.PlacePrediction, 0, len(results))
	for _, r := range results {
		p := domain.PlacePrediction{PlaceID: r.placeID(), Description: r.DisplayName}
		if loc, err := r.coordinate(); err == nil {
			p.Location = domain.Some(loc)
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func (c *Client) Resolve(ctx context.Context, p domain.PlacePrediction) (*domain.PlaceSelection, error) {
	if loc, ok := p.Location.Get(); ok {
		return &domain.PlaceSelection{PlaceID: p.PlaceID, Name: p.Description, Address: p.Description, Geometry: &loc}, nil
	}
	if p.PlaceID == "" {
		return nil, fmt.Errorf("%w: prediction has neither location nor id", domain.ErrPlaceResolution)
	}

	var results []place
	params := url.Values{"osm_ids": {p.PlaceID}, "format": {"jsonv2"}, "addressdetails": {"1"}}
	if err := c.get(ctx, "/lookup", params, "", &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, &domain.NoResultsError{Query: p.PlaceID}
	}

	r := results[0]
	sel := &domain.PlaceSelection{PlaceID: p.PlaceID, Name: r.Name, Address: r.formatAddress()}
	if sel.Name == "" {
		sel.Name = r.DisplayName
	}
	if loc, err := r.coordinate(); err == nil {
		sel.Geometry = &loc
	}
	return sel, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, lang string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim %s returned status: %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode nominatim response: %w", err)
	}
	return nil
}

// placeID encodes the OSM object as the N123/W123/R123 form /lookup accepts.
func (p place) placeID() string {
	if p.OSMType == "" || p.OSMID == 0 {
		return ""
	}
	return strings.ToUpper(p.OSMType[:1]) + strconv.FormatInt(p.OSMID, 10)
}

func (p place) coordinate() (domain.Coordinate, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse longitude: %w", err)
	}
	c := domain.Coordinate{Latitude: lat, Longitude: lon}
	if !c.Valid() {
		return domain.Coordinate{}, fmt.Errorf("coordinate out of range: %s", c)
	}
	return c, nil
}

func (p place) formatAddress() string {
	a := p.Address
	city := a.City
	if city == "" {
		city = a.Town
	}
	if city == "" {
		city = a.Village
	}

	var parts []string
	if street := strings.TrimSpace(a.HouseNumber + " " + a.Road); street != "" {
		parts = append(parts, street)
	}
	if city != "" {
		parts = append(parts, city)
	}
	if st := strings.TrimSpace(a.State + " " + a.PostCode); st != "" {
		parts = append(parts, st)
	}
	if len(parts) == 0 {
		return p.DisplayName
	}
	return strings.Join(parts, ", ")
}

// countryCodes extracts "us,ca" from a "country:us|country:ca" filter.
func countryCodes(components string) string {
	var codes []string
	for _, part := range strings.Split(components, "|") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), ":")
		if ok && k == "country" && v != "" {
			codes = append(codes, strings.ToLower(v))
		}
	}
	return strings.Join(codes, ",")
}
