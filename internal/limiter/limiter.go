// Package limiter defines interfaces and implementations for password-attempt limiting.
package limiter

import (
	"context"
	"time"
)

// Limiter throttles password attempts against gated notes. The key is
// (note id, client ip hash) so a brute-force from one origin cannot burn a
// note's gate for everyone else.
type Limiter interface {
	// Allow reports whether an attempt is currently allowed and optional retry-after.
	Allow(ctx context.Context, noteID string, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a correct password.
	Success(ctx context.Context, noteID string, ipHash []byte) error
	// Failure records a wrong password; may place a temporary block.
	Failure(ctx context.Context, noteID string, ipHash []byte) (bool, time.Duration, error)
}
