package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by repositories when a keyed record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports bad or insufficient input, detected before any network call.
type ValidationError struct {
	Msg string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.Msg }

// GeocodingError lists every postcode (display form) that could not be resolved.
type GeocodingError struct {
	Missing []string
	Err     error
}

func (e *GeocodingError) Error() string {
	if len(e.Missing) == 0 && e.Err != nil {
		return fmt.Sprintf("geocoding failed: %v", e.Err)
	}
	if len(e.Missing) == 1 {
		return fmt.Sprintf("could not find location for postcode: %s", e.Missing[0])
	}
	return fmt.Sprintf("could not find locations for postcodes: %s", strings.Join(e.Missing, ", "))
}

func (e *GeocodingError) Unwrap() error { return e.Err }

// RoutingError reports that no drivable route exists or the routing response was unusable.
type RoutingError struct {
	Msg string
	Err error
}

func (e *RoutingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("route distance: %s: %v", e.Msg, e.Err)
	}
	return "route distance: " + e.Msg
}

func (e *RoutingError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed read or write against the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persist wraps err in a PersistenceError unless it is nil or a not-found marker.
func Persist(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &PersistenceError{Op: op, Err: err}
}
