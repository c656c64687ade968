// Package common defines shared constants and sentinel errors used across
// the campuslink client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrUnavailable = errors.New("server unavailable")

	// Auth errors.
	ErrUnauthorized      = errors.New("unauthorized")
	ErrOperationInFlight = errors.New("operation already in flight")

	// Persisted-session errors. A record that cannot be unsealed or decoded
	// is treated as fatal to the session and forces a reset.
	ErrNoPersistedSession   = errors.New("no persisted session")
	ErrPersistedDataCorrupt = errors.New("persisted session data corrupt")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
