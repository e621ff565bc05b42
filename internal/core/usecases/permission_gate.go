package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/ports"
	"github.com/samirrijal/routeview/internal/pkg/metrics"
)

// PermissionGate requests and tracks location authorization. The state
// moves from Unknown to Granted or Denied once and is never reset.
type PermissionGate struct {
	svc    ports.PermissionService
	logger *slog.Logger

	mu      sync.Mutex
	state   domain.PermissionState
	outcome domain.PermissionOutcome
}

// NewPermissionGate creates a new PermissionGate.
func NewPermissionGate(svc ports.PermissionService, logger *slog.Logger) *PermissionGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionGate{svc: svc, logger: logger}
}

// RequiresPrompt reports whether Request shows a runtime prompt. When false
// the location probe is the consent step and Observe settles the gate.
func (g *PermissionGate) RequiresPrompt() bool {
	return g.svc.RequiresPrompt()
}

// State returns the current permission state.
func (g *PermissionGate) State() domain.PermissionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Outcome returns how the gate settled, or "" while Unknown.
func (g *PermissionGate) Outcome() domain.PermissionOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome
}

// Request prompts for fine location access. Once settled it returns the
// settled state without prompting again. On platforms without a prompt it
// returns Unknown and leaves settling to Observe.
func (g *PermissionGate) Request(ctx context.Context) (domain.PermissionState, error) {
	if s := g.State(); s != domain.PermissionUnknown {
		return s, g.settledErr()
	}
	if !g.svc.RequiresPrompt() {
		return domain.PermissionUnknown, nil
	}

	state, err := g.svc.Request(ctx, domain.PermissionFineLocation)
	if err != nil {
		g.logger.Error("permission request failed", "error", err)
		g.settle(domain.PermissionDenied, domain.OutcomeServiceError)
		return g.State(), fmt.Errorf("%w: %w", domain.ErrPermissionService, err)
	}

	if state == domain.PermissionGranted {
		g.settle(domain.PermissionGranted, domain.OutcomeGranted)
	} else {
		g.settle(domain.PermissionDenied, domain.OutcomeDenied)
	}
	s := g.State()
	return s, g.settledErr()
}

// Observe settles the gate from the outcome of the first location probe.
// Only an OS-level denial counts as Denied; timeouts and other failures
// still mean access was allowed.
func (g *PermissionGate) Observe(probeErr error) domain.PermissionState {
	if errors.Is(probeErr, domain.ErrLocationPermission) {
		g.settle(domain.PermissionDenied, domain.OutcomeDenied)
	} else {
		g.settle(domain.PermissionGranted, domain.OutcomeGranted)
	}
	return g.State()
}

func (g *PermissionGate) settle(state domain.PermissionState, outcome domain.PermissionOutcome) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != domain.PermissionUnknown {
		return
	}
	g.state = state
	g.outcome = outcome
	metrics.PermissionOutcomes.WithLabelValues(string(outcome)).Inc()
	g.logger.Info("location permission resolved", "state", state.String(), "outcome", outcome)
}

func (g *PermissionGate) settledErr() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case g.state != domain.PermissionDenied:
		return nil
	case g.outcome == domain.OutcomeServiceError:
		return domain.ErrPermissionService
	default:
		return domain.ErrPermissionDenied
	}
}
