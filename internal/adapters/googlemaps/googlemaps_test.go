package googlemaps_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/routeview/internal/adapters/googlemaps"
	"github.com/samirrijal/routeview/internal/core/domain"
)

const fixturePolyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func newClient(t *testing.T, h http.Handler) *googlemaps.Places {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := googlemaps.NewClient(googlemaps.Config{APIKey: "AIzaTestKey", BaseURL: srv.URL})
	require.NoError(t, err)
	return googlemaps.NewPlaces(c)
}

func TestPlaces_PredictAndResolveShareSession(t *testing.T) {
	var autocompleteToken, detailsToken string

	mux := http.NewServeMux()
	mux.HandleFunc("/maps/api/place/autocomplete/json", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "denton", q.Get("input"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "country:us", q.Get("components"))
		autocompleteToken = q.Get("sessiontoken")
		fmt.Fprint(w, `{"status":"OK","predictions":[
			{"description":"Denton, TX, USA","place_id":"ChIJ-denton"},
			{"description":"Denton, MD, USA","place_id":"ChIJ-denton-md"}]}`)
	})
	mux.HandleFunc("/maps/api/place/details/json", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id := q.Get("placeid")
		if id == "" {
			id = q.Get("place_id")
		}
		assert.Equal(t, "ChIJ-denton", id)
		detailsToken = q.Get("sessiontoken")
		fmt.Fprint(w, `{"status":"OK","result":{"place_id":"ChIJ-denton","name":"Denton",
			"formatted_address":"Denton, TX, USA","geometry":{"location":{"lat":33.2148,"lng":-97.1331}}}}`)
	})

	places := newClient(t, mux)
	ctx := context.Background()

	preds, err := places.Predict(ctx, domain.PlaceQuery{Input: "denton", Language: "en", Components: "country:us"})
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "Denton, TX, USA", preds[0].Description)

	sel, err := places.Resolve(ctx, preds[0])
	require.NoError(t, err)
	require.NotNil(t, sel.Geometry)
	assert.Equal(t, domain.Coordinate{Latitude: 33.2148, Longitude: -97.1331}, *sel.Geometry)
	assert.Equal(t, "Denton, TX, USA", sel.Address)

	assert.NotEmpty(t, autocompleteToken)
	assert.Equal(t, autocompleteToken, detailsToken)
}

func TestPlaces_EmptyInput(t *testing.T) {
	places := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))

	preds, err := places.Predict(context.Background(), domain.PlaceQuery{Input: "  "})
	assert.NoError(t, err)
	assert.Empty(t, preds)
}

func TestPlaces_MissingGeometry(t *testing.T) {
	places := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","result":{"place_id":"ChIJ-x","name":"Nowhere"}}`)
	}))

	sel, err := places.Resolve(context.Background(), domain.PlacePrediction{PlaceID: "ChIJ-x"})
	require.NoError(t, err)
	assert.Nil(t, sel.Geometry)
}

func TestDirections_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/directions/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "33.210000,-97.130000", q.Get("origin"))
		assert.Equal(t, "33.100000,-97.000000", q.Get("destination"))
		assert.Equal(t, "driving", q.Get("mode"))
		fmt.Fprintf(w, `{"status":"OK","routes":[{
			"overview_polyline":{"points":%q},
			"bounds":{"northeast":{"lat":43.252,"lng":-120.2},"southwest":{"lat":38.5,"lng":-126.453}},
			"legs":[{"distance":{"text":"17 km","value":17000},"duration":{"text":"15 mins","value":900}}]}]}`,
			fixturePolyline)
	}))
	defer srv.Close()

	c, err := googlemaps.NewClient(googlemaps.Config{APIKey: "AIzaTestKey", BaseURL: srv.URL})
	require.NoError(t, err)
	dirs := googlemaps.NewDirections(c, "en")

	res, err := dirs.Route(context.Background(), domain.RouteRequest{
		Origin:      domain.Coordinate{Latitude: 33.21, Longitude: -97.13},
		Destination: domain.Coordinate{Latitude: 33.10, Longitude: -97.00},
		Style:       domain.DefaultRouteStyle(),
	})
	require.NoError(t, err)

	require.Len(t, res.Coordinates, 3)
	assert.InDelta(t, 38.5, res.Coordinates[0].Latitude, 1e-6)
	assert.InDelta(t, -120.2, res.Coordinates[0].Longitude, 1e-6)
	assert.InDelta(t, 43.252, res.Coordinates[2].Latitude, 1e-6)
	assert.Equal(t, 17000, res.DistanceMeters)
	assert.Equal(t, 15*time.Minute, res.Duration)
	assert.InDelta(t, -126.453, res.Bounds.MinLon, 1e-9)
}

func TestDirections_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","routes":[]}`)
	}))
	defer srv.Close()

	c, err := googlemaps.NewClient(googlemaps.Config{APIKey: "AIzaTestKey", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = googlemaps.NewDirections(c, "en").Route(context.Background(), domain.RouteRequest{
		Origin:      domain.Coordinate{Latitude: 1, Longitude: 1},
		Destination: domain.Coordinate{Latitude: 2, Longitude: 2},
	})
	assert.True(t, errors.Is(err, domain.ErrRouteRequest))
}
