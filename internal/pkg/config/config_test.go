package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ROUTEVIEW_GOOGLE_API_KEY", "AIzaTestKey")

	cfg, err := Load("mapscreen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Screen.LocationTimeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %s", cfg.Screen.LocationTimeout)
	}
	if cfg.Screen.MaxCachedAge != 10*time.Second {
		t.Errorf("expected 10s max age, got %s", cfg.Screen.MaxCachedAge)
	}
	if cfg.Screen.Components != "country:us" || cfg.Screen.Language != "en" {
		t.Errorf("unexpected query defaults: %+v", cfg.Screen)
	}
	if cfg.Google.APIKey != "AIzaTestKey" {
		t.Errorf("expected api key from env, got %q", cfg.Google.APIKey)
	}
	if cfg.Telemetry.ServiceName != "mapscreen" {
		t.Errorf("expected service name mapscreen, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ROUTEVIEW_PROVIDERS_PLACES", "osm")
	t.Setenv("ROUTEVIEW_PROVIDERS_DIRECTIONS", "osm")
	t.Setenv("ROUTEVIEW_SCREEN_LOCATION_TIMEOUT", "5s")

	cfg, err := Load("mapscreen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Screen.LocationTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.Screen.LocationTimeout)
	}
}

func TestLoadConsumer_SkipsProviderChecks(t *testing.T) {
	t.Setenv("ROUTEVIEW_GOOGLE_API_KEY", "")
	t.Setenv("ROUTEVIEW_NATS_DURABLE", "tail")

	cfg, err := LoadConsumer("eventtail")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NATS.Durable != "tail" {
		t.Errorf("expected durable tail, got %q", cfg.NATS.Durable)
	}
	if _, err := Load("eventtail"); err == nil {
		t.Error("expected Load to require a google api key")
	}
}

func validConfig() Config {
	return Config{
		Screen: ScreenConfig{
			Accuracy:        "high",
			LocationTimeout: 15 * time.Second,
			MaxCachedAge:    10 * time.Second,
			RoutePadding:    50,
			StrokeWidth:     4,
			ViewportWidth:   390,
			ViewportHeight:  844,
		},
		Providers: ProvidersConfig{Places: "osm", Directions: "osm"},
		Nominatim: NominatimConfig{URL: "http://nominatim"},
		Valhalla:  ValhallaConfig{URL: "http://valhalla"},
		Device:    DeviceConfig{Permission: "granted"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad accuracy", func(c *Config) { c.Screen.Accuracy = "medium" }, "screen.accuracy"},
		{"google without key", func(c *Config) { c.Providers.Places = "google" }, "google.api_key"},
		{"unknown provider", func(c *Config) { c.Providers.Directions = "here" }, "providers.directions"},
		{"padding swallows viewport", func(c *Config) { c.Screen.RoutePadding = 500 }, "viewport"},
		{"bad permission", func(c *Config) { c.Device.Permission = "maybe" }, "device.permission"},
		{"nats without url", func(c *Config) { c.NATS.Enabled = true }, "nats.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
