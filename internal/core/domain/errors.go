package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is an explicit user (or OS policy) denial.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrPermissionService means the permission request itself failed.
	ErrPermissionService = errors.New("permission service error")

	ErrLocationTimeout     = errors.New("location request timed out")
	ErrLocationUnavailable = errors.New("location service unavailable")
	ErrLocationStale       = errors.New("location fix is stale")
	// ErrLocationPermission is a denial observed while probing, on platforms
	// without an explicit prompt.
	ErrLocationPermission = errors.New("location access denied by the OS")

	ErrPlaceResolution = errors.New("place resolution failed")
	ErrRouteRequest    = errors.New("route request failed")
)

// NoResultsError is returned when a place search finds nothing.
type NoResultsError struct {
	Query string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no results found for query: %s", e.Query)
}

// Is makes every NoResultsError match ErrPlaceResolution.
func (e *NoResultsError) Is(target error) bool {
	return target == ErrPlaceResolution
}
