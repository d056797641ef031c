// Package common defines shared constants and sentinel errors used across
// client and server layers of PaperTrail. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Validation errors (malformed input to create/update). Never retried.
	ErrorValidation = errors.New("validation error")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorDeviceGone marks a device the server no longer knows about
	// (purged or deactivated). Distinct from transient transport failures:
	// the registry re-registers on this error only.
	ErrorDeviceGone = errors.New("device gone")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
