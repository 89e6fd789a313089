package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or empty caller input. Surfaced, not retried.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound marks a question or answer that does not belong to the
	// requesting user. Surfaced.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a transition race two concurrent advances lost to
	// each other. Retried once internally, then surfaced.
	ErrConflict = errors.New("concurrent transition conflict")
	// ErrExternal marks a recoverable scorer/generator outage. Never
	// surfaced: the evaluator and selector fall back instead.
	ErrExternal = errors.New("external service unavailable")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
