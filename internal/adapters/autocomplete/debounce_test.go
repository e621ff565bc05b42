package autocomplete_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samirrijal/routeview/internal/adapters/autocomplete"
	"github.com/samirrijal/routeview/internal/core/domain"
)

type mockSearch struct {
	predicts atomic.Int32
	lastMu   sync.Mutex
	last     string
}

func (m *mockSearch) Predict(ctx context.Context, q domain.PlaceQuery) ([]domain.PlacePrediction, error) {
	m.predicts.Add(1)
	m.lastMu.Lock()
	m.last = q.Input
	m.lastMu.Unlock()
	return []domain.PlacePrediction{{PlaceID: q.Input}}, nil
}

func (m *mockSearch) Resolve(ctx context.Context, p domain.PlacePrediction) (*domain.PlaceSelection, error) {
	return &domain.PlaceSelection{PlaceID: p.PlaceID}, nil
}

func TestDebounced_OnlyLastOfBurst(t *testing.T) {
	next := &mockSearch{}
	d := autocomplete.NewDebounced(next, 30*time.Millisecond)

	inputs := []string{"d", "de", "den", "dent"}
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in string) {
			defer wg.Done()
			_, errs[i] = d.Predict(context.Background(), domain.PlaceQuery{Input: in})
		}(i, in)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	if n := next.predicts.Load(); n != 1 {
		t.Fatalf("expected 1 provider call, got %d", n)
	}
	if next.last != "dent" {
		t.Errorf("expected last input to win, got %q", next.last)
	}
	for i := 0; i < len(inputs)-1; i++ {
		if !errors.Is(errs[i], autocomplete.ErrDebounced) {
			t.Errorf("input %q: expected ErrDebounced, got %v", inputs[i], errs[i])
		}
	}
	if errs[len(inputs)-1] != nil {
		t.Errorf("expected last input to succeed, got %v", errs[len(inputs)-1])
	}
}

func TestDebounced_ResolvePassesThrough(t *testing.T) {
	d := autocomplete.NewDebounced(&mockSearch{}, time.Hour)

	sel, err := d.Resolve(context.Background(), domain.PlacePrediction{PlaceID: "x"})
	if err != nil || sel.PlaceID != "x" {
		t.Errorf("unexpected resolve result %+v, %v", sel, err)
	}
}
