package googlemaps

import (
	"fmt"
	"net/http"
	"time"

	"googlemaps.github.io/maps"
)

// Config holds Google Maps Platform settings.
type Config struct {
	APIKey  string
	BaseURL string // overrides https://maps.googleapis.com, used in tests
	Timeout time.Duration
}

// NewClient builds a Maps Platform client shared by the places and
// directions adapters.
func NewClient(cfg Config) (*maps.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}

	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("google maps client: %w", err)
	}
	return c, nil
}
