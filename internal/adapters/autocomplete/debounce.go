// Package autocomplete adapts place-search collaborators to keystroke input.
package autocomplete

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/ports"
)

// DefaultDelay is the quiet period before a query is sent.
const DefaultDelay = 200 * time.Millisecond

// ErrDebounced is returned to a Predict call replaced by a newer one
// before its quiet period elapsed.
var ErrDebounced = errors.New("query replaced before debounce elapsed")

// Debounced wraps a PlaceSearch so that only the last of a burst of
// predictions reaches the provider.
type Debounced struct {
	next  ports.PlaceSearch
	delay time.Duration

	mu  sync.Mutex
	gen uint64
}

// NewDebounced wraps next. A non-positive delay uses DefaultDelay.
func NewDebounced(next ports.PlaceSearch, delay time.Duration) *Debounced {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debounced{next: next, delay: delay}
}

func (d *Debounced) Predict(ctx context.Context, q domain.PlaceQuery) ([]domain.PlacePrediction, error) {
	d.mu.Lock()
	d.gen++
	mine := d.gen
	d.mu.Unlock()

	t := time.NewTimer(d.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	d.mu.Lock()
	latest := d.gen
	d.mu.Unlock()
	if mine != latest {
		return nil, ErrDebounced
	}
	return d.next.Predict(ctx, q)
}

// Resolve is passed through without delay.
func (d *Debounced) Resolve(ctx context.Context, p domain.PlacePrediction) (*domain.PlaceSelection, error) {
	return d.next.Resolve(ctx, p)
}
