package storage

import "errors"

// Common client storage errors
var (
	// ErrNotFound indicates that the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConstraintViolation indicates that a referenced parent record
	// (project, layer, form, feature or user) is absent
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidMutationType indicates that a mutation cannot be applied to the
	// current entity state: UPDATE or DELETE of an absent entity, CREATE of an existing one
	ErrInvalidMutationType = errors.New("invalid mutation type for entity state")

	// ErrInvalidTransition indicates a forbidden tile or area download state change
	ErrInvalidTransition = errors.New("invalid download state transition")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
