package storage

import "errors"

// Common storage errors
var (
	// ErrNotFound indicates that the requested document does not exist
	ErrNotFound = errors.New("document not found")

	// ErrConflict indicates that a mutation does not match the stored document,
	// e.g. an update of a feature that was never created
	ErrConflict = errors.New("mutation conflicts with stored document")

	// ErrInvalidMutation indicates a malformed mutation: unknown layer or form,
	// or a mutation that belongs to another project
	ErrInvalidMutation = errors.New("invalid mutation")
)
