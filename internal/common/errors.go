// Package common defines shared constants and sentinel errors used across
// fishlog components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository/store-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal        = errors.New("internal error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSweepInProgress = errors.New("sync sweep already in progress")

	// Identity errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
