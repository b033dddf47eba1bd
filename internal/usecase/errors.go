package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrConfirmationRequired rejects an attack formation change that would
	// discard a completed squad until the caller explicitly confirms it.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrRosterFetchFailed is recoverable: the caller may retry manually and
	// any last-known roster for the match stays usable.
	ErrRosterFetchFailed = errors.New("roster fetch failed")
)
