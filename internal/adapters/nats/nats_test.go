package natsadapter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/samirrijal/routeview/internal/core/domain"
)

func TestSubjectsCoveredByStream(t *testing.T) {
	cfg := StreamConfig()
	if len(cfg.Subjects) != 1 {
		t.Fatalf("expected one subject filter, got %v", cfg.Subjects)
	}
	prefix := strings.TrimSuffix(cfg.Subjects[0], ">")

	for _, typ := range []domain.ScreenEventType{
		domain.EventPermissionResolved,
		domain.EventLocationFixed,
		domain.EventRouteRendered,
		domain.EventMarkerDragged,
	} {
		if subj := Subject(typ); !strings.HasPrefix(subj, prefix) {
			t.Errorf("subject %s not covered by %s", subj, cfg.Subjects[0])
		}
	}
}

func TestScreenEventWireFormat(t *testing.T) {
	c := domain.Coordinate{Latitude: 33.2, Longitude: -97.12}
	evt := domain.ScreenEvent{
		ID:         uuid.New(),
		ScreenID:   uuid.New(),
		Type:       domain.EventPlaceSelected,
		Role:       domain.RoleSource,
		Coordinate: &c,
	}
	data, err := json.Marshal(&evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["type"] != "place_selected" || raw["role"] != "source" {
		t.Errorf("unexpected payload: %s", data)
	}
	if _, ok := raw["outcome"]; ok {
		t.Error("empty outcome must be omitted")
	}
}
