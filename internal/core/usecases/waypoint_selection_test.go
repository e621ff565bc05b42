package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/usecases"
)

func TestWaypointSelection_PairNeedsBoth(t *testing.T) {
	var w usecases.WaypointSelection

	_, ok := w.Pair()
	assert.False(t, ok)

	w.Set(domain.RoleDestination, dstCoord)
	_, ok = w.Pair()
	assert.False(t, ok)
	assert.False(t, w.Origin().IsSet())

	w.Set(domain.RoleSource, srcCoord)
	pair, ok := w.Pair()
	assert.True(t, ok)
	assert.Equal(t, domain.RoutePair{Origin: srcCoord, Destination: dstCoord}, pair)
}

func TestWaypointSelection_Overwrites(t *testing.T) {
	var w usecases.WaypointSelection

	w.Set(domain.RoleDestination, dstCoord)
	w.Set(domain.RoleDestination, dstCoord2)

	got, ok := w.Get(domain.RoleDestination).Get()
	assert.True(t, ok)
	assert.Equal(t, dstCoord2, got)
}

func TestWaypointSelection_SameCoordinateForBothRoles(t *testing.T) {
	var w usecases.WaypointSelection

	w.Set(domain.RoleSource, srcCoord)
	w.Set(domain.RoleDestination, srcCoord)

	pair, ok := w.Pair()
	assert.True(t, ok)
	assert.Equal(t, pair.Origin, pair.Destination)
}

func TestWaypointSelection_UnknownRoleIgnored(t *testing.T) {
	var w usecases.WaypointSelection

	w.Set("via", srcCoord)

	assert.False(t, w.Origin().IsSet())
	assert.False(t, w.Destination().IsSet())
	assert.False(t, w.Get("via").IsSet())
}
