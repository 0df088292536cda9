package service

import (
	"errors"
	"fmt"

	"github.com/StrafeZ/quality-inspector-app/internal/models"
	"github.com/StrafeZ/quality-inspector-app/internal/repository"
)

// ErrNotFound is returned when an order, job card, inspection or template
// cannot be resolved. Aliased to the repository sentinel so callers can test
// either with errors.Is.
var ErrNotFound = repository.ErrNotFound

// ValidationError reports a missing or malformed field, rejected before any
// store call is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a transition disallowed by the inspection state
// machine. When starting a duplicate inspection, Existing carries the report
// already active for the order so callers can redirect to it.
type ConflictError struct {
	Reason   string
	Existing *models.InspectionReport
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// IsConflict reports whether err is a ConflictError and returns it if so.
func IsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
