package googlemaps

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"googlemaps.github.io/maps"

	"github.com/samirrijal/routeview/internal/core/domain"
)

var detailFields = []maps.PlaceDetailsFieldMask{
	maps.PlaceDetailsFieldMaskPlaceID,
	maps.PlaceDetailsFieldMaskName,
	maps.PlaceDetailsFieldMaskFormattedAddress,
	maps.PlaceDetailsFieldMaskGeometry,
}

// Places implements ports.PlaceSearch with Places Autocomplete followed by
// Place Details. Predictions and the details lookup that follows share a
// session token so they are billed as one session.
type Places struct {
	client *maps.Client

	mu      sync.Mutex
	session maps.PlaceAutocompleteSessionToken
	active  bool
}

// NewPlaces creates a new Places adapter.
func NewPlaces(client *maps.Client) *Places {
	return &Places{client: client}
}

func (p *Places) Predict(ctx context.Context, q domain.PlaceQuery) ([]domain.PlacePrediction, error) {
	if strings.TrimSpace(q.Input) == "" {
		return nil, nil
	}

	req := &maps.PlaceAutocompleteRequest{
		Input:        q.Input,
		Language:     q.Language,
		Components:   parseComponents(q.Components),
		SessionToken: p.token(),
	}

	resp, err := p.client.PlaceAutocomplete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("place autocomplete: %w", err)
	}

	out := make([]domain.PlacePrediction, 0, len(resp.Predictions))
	for _, pr := range resp.Predictions {
		out = append(out, domain.PlacePrediction{PlaceID: pr.PlaceID, Description: pr.Description})
	}
	return out, nil
}

func (p *Places) Resolve(ctx context.Context, pred domain.PlacePrediction) (*domain.PlaceSelection, error) {
	req := &maps.PlaceDetailsRequest{
		PlaceID:      pred.PlaceID,
		Fields:       detailFields,
		SessionToken: p.endSession(),
	}

	res, err := p.client.PlaceDetails(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("place details %s: %w", pred.PlaceID, err)
	}

	sel := &domain.PlaceSelection{
		PlaceID: res.PlaceID,
		Name:    res.Name,
		Address: res.FormattedAddress,
	}
	if sel.PlaceID == "" {
		sel.PlaceID = pred.PlaceID
	}
	loc := res.Geometry.Location
	if loc.Lat != 0 || loc.Lng != 0 {
		sel.Geometry = &domain.Coordinate{Latitude: loc.Lat, Longitude: loc.Lng}
	}
	return sel, nil
}

func (p *Places) token() maps.PlaceAutocompleteSessionToken {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		p.session = maps.NewPlaceAutocompleteSessionToken()
		p.active = true
	}
	return p.session
}

// endSession returns the current token and starts a fresh session on the
// next prediction.
func (p *Places) endSession() maps.PlaceAutocompleteSessionToken {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return maps.NewPlaceAutocompleteSessionToken()
	}
	p.active = false
	return p.session
}

// parseComponents turns "country:us|country:ca" into the client's filter map.
func parseComponents(s string) map[maps.Component][]string {
	if s == "" {
		return nil
	}
	out := make(map[maps.Component][]string)
	for _, part := range strings.Split(s, "|") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || v == "" {
			continue
		}
		c := maps.Component(k)
		out[c] = append(out[c], v)
	}
	return out
}
