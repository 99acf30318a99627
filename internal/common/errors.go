// Package common defines shared constants and sentinel errors used across
// tripkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store errors.
	ErrNotInitialized = errors.New("local store is not initialized")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")

	// Lifecycle errors.
	ErrValidationFailed = errors.New("validation failed")
	ErrAlreadySynced    = errors.New("record is already synced")

	// Account errors.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSelfDelete         = errors.New("cannot delete the user of the active session")
	ErrNoSession          = errors.New("no active session")

	// Remote errors. Every gateway call resolves to exactly one of these.
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTimeout      = errors.New("request timed out")
	ErrServer       = errors.New("server error")
	ErrUnreachable  = errors.New("server unreachable")
)

// IsRemote reports whether err belongs to the remote error taxonomy.
func IsRemote(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServer) ||
		errors.Is(err, ErrUnreachable)
}
