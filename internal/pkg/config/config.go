package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Screen    ScreenConfig    `mapstructure:"screen"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Google    GoogleConfig    `mapstructure:"google"`
	Nominatim NominatimConfig `mapstructure:"nominatim"`
	Valhalla  ValhallaConfig  `mapstructure:"valhalla"`
	Device    DeviceConfig    `mapstructure:"device"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

type ScreenConfig struct {
	Accuracy        string        `mapstructure:"accuracy"`
	LocationTimeout time.Duration `mapstructure:"location_timeout"`
	MaxCachedAge    time.Duration `mapstructure:"max_cached_age"`
	MoveDuration    time.Duration `mapstructure:"move_duration"`
	RoutePadding    int           `mapstructure:"route_padding"`
	StrokeWidth     int           `mapstructure:"stroke_width"`
	StrokeColor     string        `mapstructure:"stroke_color"`
	Language        string        `mapstructure:"language"`
	Components      string        `mapstructure:"components"`
	Debounce        time.Duration `mapstructure:"debounce"`
	ViewportWidth   int           `mapstructure:"viewport_width"`
	ViewportHeight  int           `mapstructure:"viewport_height"`
}

// ProvidersConfig selects the place-search and directions backends:
// "google" or "osm" (Nominatim and Valhalla).
type ProvidersConfig struct {
	Places     string `mapstructure:"places"`
	Directions string `mapstructure:"directions"`
}

type GoogleConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type NominatimConfig struct {
	URL       string        `mapstructure:"url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ValhallaConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DeviceConfig configures the stand-in permission and location services.
type DeviceConfig struct {
	Prompt          bool          `mapstructure:"prompt"`
	Permission      string        `mapstructure:"permission"` // granted, denied or error
	Latitude        float64       `mapstructure:"latitude"`
	Longitude       float64       `mapstructure:"longitude"`
	FixDelay        time.Duration `mapstructure:"fix_delay"`
	FixAge          time.Duration `mapstructure:"fix_age"`
	LocationFailure string        `mapstructure:"location_failure"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
	Durable string `mapstructure:"durable"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables and
// validates everything a map screen host needs.
func Load(service string) (*Config, error) {
	cfg, err := read(service)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConsumer reads configuration for processes that only consume the
// screen event stream. Screen and provider settings are not validated.
func LoadConsumer(service string) (*Config, error) {
	cfg, err := read(service)
	if err != nil {
		return nil, err
	}
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("config validation failed:\n  - nats.url is required")
	}
	return cfg, nil
}

func read(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("screen.accuracy", "high")
	v.SetDefault("screen.location_timeout", 15*time.Second)
	v.SetDefault("screen.max_cached_age", 10*time.Second)
	v.SetDefault("screen.move_duration", time.Second)
	v.SetDefault("screen.route_padding", 50)
	v.SetDefault("screen.stroke_width", 4)
	v.SetDefault("screen.stroke_color", "blue")
	v.SetDefault("screen.language", "en")
	v.SetDefault("screen.components", "country:us")
	v.SetDefault("screen.debounce", 200*time.Millisecond)
	v.SetDefault("screen.viewport_width", 390)
	v.SetDefault("screen.viewport_height", 844)
	v.SetDefault("providers.places", "google")
	v.SetDefault("providers.directions", "google")
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.base_url", "")
	v.SetDefault("google.timeout", 10*time.Second)
	v.SetDefault("nominatim.url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "routeview/1.0")
	v.SetDefault("nominatim.timeout", 10*time.Second)
	v.SetDefault("valhalla.url", "http://localhost:8002")
	v.SetDefault("valhalla.timeout", 15*time.Second)
	v.SetDefault("device.prompt", true)
	v.SetDefault("device.permission", "granted")
	v.SetDefault("device.latitude", 33.20)
	v.SetDefault("device.longitude", -97.12)
	v.SetDefault("device.fix_delay", 300*time.Millisecond)
	v.SetDefault("device.fix_age", time.Second)
	v.SetDefault("device.location_failure", "")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.durable", "")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", service)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: ROUTEVIEW_GOOGLE_API_KEY → google.api_key
	v.SetEnvPrefix("ROUTEVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	s := c.Screen
	if s.Accuracy != "high" && s.Accuracy != "low" {
		errs = append(errs, fmt.Sprintf("screen.accuracy must be high or low, got %q", s.Accuracy))
	}
	if s.LocationTimeout <= 0 {
		errs = append(errs, "screen.location_timeout must be positive")
	}
	if s.MaxCachedAge <= 0 {
		errs = append(errs, "screen.max_cached_age must be positive")
	}
	if s.RoutePadding < 0 {
		errs = append(errs, "screen.route_padding must not be negative")
	}
	if s.ViewportWidth <= 2*s.RoutePadding || s.ViewportHeight <= 2*s.RoutePadding {
		errs = append(errs, fmt.Sprintf("screen viewport %dx%d leaves no room inside %dpx padding",
			s.ViewportWidth, s.ViewportHeight, s.RoutePadding))
	}
	if s.StrokeWidth <= 0 {
		errs = append(errs, "screen.stroke_width must be positive")
	}

	if p := c.Providers.Places; p != "google" && p != "osm" {
		errs = append(errs, fmt.Sprintf("providers.places must be google or osm, got %q", p))
	}
	if p := c.Providers.Directions; p != "google" && p != "osm" {
		errs = append(errs, fmt.Sprintf("providers.directions must be google or osm, got %q", p))
	}
	if (c.Providers.Places == "google" || c.Providers.Directions == "google") && c.Google.APIKey == "" {
		errs = append(errs, "google.api_key is required for google providers")
	}
	if c.Providers.Places == "osm" && c.Nominatim.URL == "" {
		errs = append(errs, "nominatim.url is required")
	}
	if c.Providers.Directions == "osm" && c.Valhalla.URL == "" {
		errs = append(errs, "valhalla.url is required")
	}

	switch c.Device.Permission {
	case "granted", "denied", "error":
	default:
		errs = append(errs, fmt.Sprintf("device.permission must be granted, denied or error, got %q", c.Device.Permission))
	}
	switch c.Device.LocationFailure {
	case "", "timeout", "unavailable", "denied":
	default:
		errs = append(errs, fmt.Sprintf("device.location_failure unknown: %q", c.Device.LocationFailure))
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Telemetry.Enabled && c.Telemetry.TempoAddr == "" {
		errs = append(errs, "telemetry.tempo_addr is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
