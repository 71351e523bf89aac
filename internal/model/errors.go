package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for lookups and business-rule violations.
var (
	ErrNotFound              = errors.New("not found")
	ErrAlreadyConfirmed      = errors.New("reservation is already confirmed")
	ErrAlreadyCanceled       = errors.New("reservation is already canceled")
	ErrCompletedCannotCancel = errors.New("cannot cancel a completed reservation")
	ErrInvalidTransition     = errors.New("invalid status transition")
)

// ValidationError reports malformed input rejected before touching the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports that a candidate interval overlaps a live
// reservation on the same resource.
type ConflictError struct {
	ResourceID    string
	ReservationID string
	Existing      Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"conflict with reservation %s on resource %s (start: %s, end: %s)",
		e.ReservationID, e.ResourceID,
		e.Existing.Start.UTC().Format("2006-01-02T15:04:05Z"),
		e.Existing.End.UTC().Format("2006-01-02T15:04:05Z"),
	)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// AsConflict extracts a ConflictError from err.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AsValidation extracts a ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
