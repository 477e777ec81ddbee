// Package common defines shared constants and sentinel errors used across
// the layers of AuthKeeper. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Authentication errors. Unknown email and wrong password both map to
	// ErrAuthFailed so a caller cannot enumerate registered accounts.
	ErrAuthFailed = errors.New("invalid credentials")

	// Token lifecycle errors. An absent, malformed, or already-rotated
	// token is ErrInvalidToken; a time-based lapse is reported separately
	// as ErrTokenExpired because the client remediation differs.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrUserNotFound is returned when a refresh token is valid but its
	// owning user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)
