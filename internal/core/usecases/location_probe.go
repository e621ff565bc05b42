package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/ports"
	"github.com/samirrijal/routeview/internal/pkg/metrics"
)

// LocationProbe obtains a single device position. It holds no state
// between calls and is safe to run off the screen loop.
type LocationProbe struct {
	svc    ports.LocationService
	opts   domain.LocationOptions
	now    func() time.Time
	logger *slog.Logger
}

// NewLocationProbe creates a new LocationProbe. Zero option fields take the defaults.
func NewLocationProbe(svc ports.LocationService, opts domain.LocationOptions, logger *slog.Logger) *LocationProbe {
	def := domain.DefaultLocationOptions()
	if !opts.Accuracy.IsValid() {
		opts.Accuracy = def.Accuracy
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxCachedAge <= 0 {
		opts.MaxCachedAge = def.MaxCachedAge
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationProbe{svc: svc, opts: opts, now: time.Now, logger: logger}
}

// Options returns the effective request options.
func (p *LocationProbe) Options() domain.LocationOptions {
	return p.opts
}

// Probe asks for the current position, bounded by the configured timeout.
// A fix at least MaxCachedAge old, or one without a timestamp, is rejected
// as stale.
func (p *LocationProbe) Probe(ctx context.Context) (domain.LocationFix, error) {
	start := time.Now()
	defer metrics.ObserveSince(metrics.LocationProbeDuration, start)

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	fix, err := p.svc.CurrentPosition(ctx, p.opts)
	if err != nil {
		err = classifyLocationErr(ctx, err)
		metrics.LocationProbes.WithLabelValues(locationResult(err)).Inc()
		return domain.LocationFix{}, err
	}

	if !fix.Coordinate.Valid() {
		metrics.LocationProbes.WithLabelValues("unavailable").Inc()
		return domain.LocationFix{}, fmt.Errorf("%w: invalid coordinate %s", domain.ErrLocationUnavailable, fix.Coordinate)
	}

	if fix.Timestamp.IsZero() {
		metrics.LocationProbes.WithLabelValues("stale").Inc()
		return domain.LocationFix{}, fmt.Errorf("%w: fix has no timestamp", domain.ErrLocationStale)
	}
	if age := p.now().Sub(fix.Timestamp); age >= p.opts.MaxCachedAge {
		metrics.LocationProbes.WithLabelValues("stale").Inc()
		return domain.LocationFix{}, fmt.Errorf("%w: fix is %s old (max %s)", domain.ErrLocationStale, age.Round(time.Millisecond), p.opts.MaxCachedAge)
	}

	metrics.LocationProbes.WithLabelValues("ok").Inc()
	return fix, nil
}

func classifyLocationErr(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrLocationPermission),
		errors.Is(err, domain.ErrLocationTimeout),
		errors.Is(err, domain.ErrLocationUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrLocationTimeout, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
}

func locationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrLocationPermission):
		return "denied"
	case errors.Is(err, domain.ErrLocationTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrLocationStale):
		return "stale"
	default:
		return "unavailable"
	}
}
