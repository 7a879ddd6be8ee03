package report

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is deliberately generic: callers must not learn whether
	// a report exists at a severity they cannot see.
	ErrAccessDenied = errors.New("access denied")

	// ErrConflict signals a lost optimistic-concurrency race; the caller
	// should re-fetch and retry.
	ErrConflict = errors.New("report was modified concurrently")

	ErrNotFound = errors.New("report not found")

	// ErrDuplicateAnonymousID is surfaced by the store on a uniqueness
	// conflict so the identifier can be regenerated.
	ErrDuplicateAnonymousID = errors.New("anonymous id already exists")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

type InsufficientPermissionError struct {
	Required string
	Actual   string
}

func (e *InsufficientPermissionError) Error() string {
	return fmt.Sprintf("requires %s, caller has %s", e.Required, e.Actual)
}
