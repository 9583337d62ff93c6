// Package common defines shared constants and sentinel errors used across
// the Rastlinka marketplace server. Callers should use errors.Is to match
// these values; the HTTP layer maps them to response status codes.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Authentication errors. Login failures for an unknown email and for a
	// wrong password collapse into the same ErrInvalidCredentials so that
	// responses cannot be used for account enumeration.
	ErrNoToken            = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Authorization error: the caller is authenticated but does not own
	// the resource it is trying to read or mutate.
	ErrForbidden = errors.New("forbidden")
)
