package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/m-yakovlev/sealnote/internal/errs"
	"github.com/m-yakovlev/sealnote/internal/model"
)

// NoteRepo implements NoteRepository using PostgreSQL.
type NoteRepo struct{ db *DB }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo { return &NoteRepo{db: db} }

const noteColumns = `id, ciphertext, COALESCE(encrypted_key,''::bytea), iv, auth_tag, is_file,
COALESCE(file_name,''), COALESCE(mime_type,''),
expires_at, max_views, view_count,
COALESCE(password_hash,''::bytea), COALESCE(salt,''::bytea),
destroyed, created_at`

// Create inserts a new Active note row.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	const q = `
INSERT INTO notes (id, ciphertext, encrypted_key, iv, auth_tag, is_file, file_name, mime_type,
                   expires_at, max_views, view_count, password_hash, salt, destroyed, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),NULLIF($8,''),$9,$10,0,$11,$12,false,$13)`
	_, err := r.db.Pool.Exec(ctx, q,
		n.ID, n.Ciphertext, n.EncryptedKey, n.IV, n.AuthTag, n.IsFile, n.FileName, n.MimeType,
		n.ExpiresAt, n.MaxViews, n.PasswordHash, n.Salt, n.CreatedAt)
	return err
}

// Get loads a note without mutating its state.
func (r *NoteRepo) Get(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	const q = `SELECT ` + noteColumns + ` FROM notes WHERE id=$1`
	n, err := scanNote(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// Consume applies the read transition under a row lock. Two concurrent reads
// of the last permitted view serialize on FOR UPDATE: the first takes the
// final view and flips destroyed, the second observes the tombstone.
func (r *NoteRepo) Consume(ctx context.Context, id uuid.UUID, now time.Time) (*model.Note, error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	const sel = `SELECT ` + noteColumns + ` FROM notes WHERE id=$1 FOR UPDATE`
	n, err := scanNote(tx.QueryRow(ctx, sel, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	if n.Destroyed {
		return nil, errs.ErrGone
	}

	// Lazy expiry and an exhausted cap both tombstone the row; the payload
	// columns are nulled so the tombstone carries no ciphertext.
	expired := n.ExpiresAt != nil && now.After(*n.ExpiresAt)
	exhausted := n.MaxViews > 0 && n.ViewCount >= n.MaxViews
	if expired || exhausted {
		const kill = `
UPDATE notes SET destroyed=true, ciphertext=''::bytea, encrypted_key=NULL, iv=''::bytea, auth_tag=''::bytea
WHERE id=$1`
		if _, err = tx.Exec(ctx, kill, id); err != nil {
			return nil, err
		}
		if err = tx.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
		return nil, errs.ErrGone
	}

	n.ViewCount++
	lastView := n.MaxViews > 0 && n.ViewCount == n.MaxViews
	if lastView {
		// Final permitted view: count it and destroy in the same update.
		const upd = `
UPDATE notes SET view_count=$2, destroyed=true, ciphertext=''::bytea, encrypted_key=NULL, iv=''::bytea, auth_tag=''::bytea
WHERE id=$1`
		if _, err = tx.Exec(ctx, upd, id, n.ViewCount); err != nil {
			return nil, err
		}
		n.Destroyed = true
	} else {
		const upd = `UPDATE notes SET view_count=$2 WHERE id=$1`
		if _, err = tx.Exec(ctx, upd, id, n.ViewCount); err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return n, nil
}

// Destroy forces the tombstone transition. Safe to repeat.
func (r *NoteRepo) Destroy(ctx context.Context, id uuid.UUID) error {
	const q = `
UPDATE notes SET destroyed=true, ciphertext=''::bytea, encrypted_key=NULL, iv=''::bytea, auth_tag=''::bytea
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// scanNote reads a full note row in noteColumns order.
func scanNote(row pgx.Row) (*model.Note, error) {
	var n model.Note
	err := row.Scan(
		&n.ID, &n.Ciphertext, &n.EncryptedKey, &n.IV, &n.AuthTag, &n.IsFile,
		&n.FileName, &n.MimeType,
		&n.ExpiresAt, &n.MaxViews, &n.ViewCount,
		&n.PasswordHash, &n.Salt,
		&n.Destroyed, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(n.PasswordHash) == 0 {
		n.PasswordHash = nil
	}
	if len(n.Salt) == 0 {
		n.Salt = nil
	}
	return &n, nil
}
