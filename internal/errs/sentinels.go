// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested note does not exist.
	ErrNotFound = errors.New("not found")

	// ErrGone indicates the note was destroyed (expired, views exhausted, or
	// deleted). Collapsed to one error so callers cannot tell which mechanism
	// fired.
	ErrGone = errors.New("gone")

	// ErrUnauthorized indicates a wrong password on a gated note.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPasswordRequired indicates a gated note was read without a password.
	// Distinguished from ErrUnauthorized only so the client can prompt.
	ErrPasswordRequired = errors.New("password required")

	// ErrRateLimited indicates temporary lockout after repeated bad passwords.
	ErrRateLimited = errors.New("rate limited")
)
