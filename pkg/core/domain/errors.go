package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. The HTTP layer maps these to status codes:
// ErrValidation 400, ErrConflict 409, ErrNotFound 404, ErrGone 410, anything else 500.
var (
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("alias already in use")
	ErrRetriesExhausted = errors.New("failed to generate code")
	ErrNotFound         = errors.New("link not found")
	ErrGone             = errors.New("link expired")

	// ErrUniqueViolation is returned by repositories when the short code is taken.
	ErrUniqueViolation = errors.New("short code already exists")
)

// Invalidf wraps ErrValidation with a caller-facing message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// RetriesExhaustedError reports that every generated code collided.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", ErrRetriesExhausted, e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Last
}
