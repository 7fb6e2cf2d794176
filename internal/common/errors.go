package common

import "errors"

var (
	// ErrUnknownEvent is returned when an (objectType, eventName) pair is
	// not in the registry. The calling operation fails before any mutation.
	ErrUnknownEvent = errors.New("unknown notification event")

	// ErrValidation is returned for malformed caller input, surfaced before
	// any store mutation.
	ErrValidation = errors.New("invalid input")

	// ErrStoreFailure wraps persistence errors. The whole fire or revoke
	// operation aborts; nothing is partially committed.
	ErrStoreFailure = errors.New("notification store failure")

	// ErrNotFound is returned by lookups that locate nothing.
	ErrNotFound = errors.New("not found")
)
