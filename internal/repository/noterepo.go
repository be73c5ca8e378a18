// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/m-yakovlev/sealnote/internal/model"
)

// NoteRepository provides lifecycle access to stored notes.
//
// A note moves Active -> Destroyed exactly once and never back. Consume is
// the only operation that increments the view counter and it must be atomic
// with respect to concurrent consumers of the same note.
type NoteRepository interface {
	// Create inserts a new Active note.
	Create(ctx context.Context, n *model.Note) error

	// Get loads a note without touching its state. Used for the password
	// gate and the destroyed pre-check.
	Get(ctx context.Context, id uuid.UUID) (*model.Note, error)

	// Consume performs the read-and-count transition: re-checks destroyed,
	// expiry and view cap under a row lock, increments the counter and, when
	// the increment reaches the cap or the note is past expiry, flips
	// destroyed in the same transaction. Returns the note with the
	// post-increment counter, or errs.ErrGone / errs.ErrNotFound.
	Consume(ctx context.Context, id uuid.UUID, now time.Time) (*model.Note, error)

	// Destroy forces the terminal transition. Idempotent for existing notes;
	// errs.ErrNotFound for unknown ids.
	Destroy(ctx context.Context, id uuid.UUID) error
}
