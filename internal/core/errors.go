package core

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by all services. Services wrap these sentinels
// with fmt.Errorf("...: %w", ...) so callers can classify failures with
// errors.Is while keeping the human-readable detail.
var (
	// ErrNotFound is returned when a referenced client or invoice does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed or rule-violating
	// input: overpayment attempts, bad CSV rows, invalid statuses.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable is returned when an external collaborator (the NL
	// query service) is unconfigured or unreachable. It degrades one
	// endpoint; it must never take the rest of the API down.
	ErrUnavailable = errors.New("service unavailable")
)

// ImportError aggregates per-row failures from a CSV client import.
// The batch is all-or-nothing: if Rows is non-empty nothing was
// persisted.
type ImportError struct {
	Message string
	Rows    []string
}

func (e *ImportError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrInvalidInput) classify import failures.
func (e *ImportError) Unwrap() error {
	return ErrInvalidInput
}

func newImportError(rows []string) *ImportError {
	return &ImportError{
		Message: fmt.Sprintf("Import failed with %d error(s).", len(rows)),
		Rows:    rows,
	}
}
