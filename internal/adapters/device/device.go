// Package device provides configured stand-ins for the platform permission
// and location services, used by headless hosts and demos.
package device

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/routeview/internal/core/domain"
)

// StaticPermission answers the permission prompt with a fixed decision.
type StaticPermission struct {
	Prompt   bool
	Decision domain.PermissionState
	Err      error
	Delay    time.Duration
}

func (p *StaticPermission) RequiresPrompt() bool { return p.Prompt }

func (p *StaticPermission) Request(ctx context.Context, kind domain.PermissionKind) (domain.PermissionState, error) {
	if err := sleep(ctx, p.Delay); err != nil {
		return domain.PermissionUnknown, err
	}
	if p.Err != nil {
		return domain.PermissionUnknown, p.Err
	}
	return p.Decision, nil
}

// FailureMode makes StaticLocation fail in a specific way.
type FailureMode string

const (
	FailNone        FailureMode = ""
	FailTimeout     FailureMode = "timeout"
	FailUnavailable FailureMode = "unavailable"
	FailDenied      FailureMode = "denied"
)

// IsValid checks if the failure mode is known.
func (m FailureMode) IsValid() bool {
	switch m {
	case FailNone, FailTimeout, FailUnavailable, FailDenied:
		return true
	}
	return false
}

// StaticLocation reports a configured fix after Delay. Age backdates the
// fix timestamp to exercise staleness checks.
type StaticLocation struct {
	Fix            domain.Coordinate
	AccuracyMeters float64
	Delay          time.Duration
	Age            time.Duration
	Failure        FailureMode
}

func (l *StaticLocation) CurrentPosition(ctx context.Context, opts domain.LocationOptions) (domain.LocationFix, error) {
	switch l.Failure {
	case FailTimeout:
		<-ctx.Done()
		return domain.LocationFix{}, ctx.Err()
	case FailUnavailable:
		return domain.LocationFix{}, fmt.Errorf("%w: location provider disabled", domain.ErrLocationUnavailable)
	case FailDenied:
		return domain.LocationFix{}, domain.ErrLocationPermission
	}

	if err := sleep(ctx, l.Delay); err != nil {
		return domain.LocationFix{}, err
	}
	acc := l.AccuracyMeters
	if acc == 0 && opts.Accuracy == domain.AccuracyHigh {
		acc = 5
	} else if acc == 0 {
		acc = 100
	}
	return domain.LocationFix{
		Coordinate:     l.Fix,
		Timestamp:      time.Now().Add(-l.Age),
		AccuracyMeters: acc,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
