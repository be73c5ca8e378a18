// Package service contains the application service for the note lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/m-yakovlev/sealnote/internal/crypto"
	"github.com/m-yakovlev/sealnote/internal/crypto/notecrypt"
	"github.com/m-yakovlev/sealnote/internal/errs"
	"github.com/m-yakovlev/sealnote/internal/limiter"
	"github.com/m-yakovlev/sealnote/internal/model"
	"github.com/m-yakovlev/sealnote/internal/repository"
)

// maxPayloadBytes bounds a single encrypted payload.
const maxPayloadBytes = 1 << 20

// Created reports the outcome of a successful note creation.
type Created struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	DeleteToken string
}

// NoteService defines the note lifecycle operations.
type NoteService interface {
	// Create allocates a new Active note and issues its deletion token.
	Create(ctx context.Context, in model.CreateNote) (Created, error)
	// ReadWithIP runs the destruction checks in order and, when they pass,
	// consumes one view. ip feeds the password-attempt limiter.
	ReadWithIP(ctx context.Context, id uuid.UUID, password, ip string) (*model.NoteView, error)
	// Delete forces the terminal transition, independent of expiry and views.
	Delete(ctx context.Context, id uuid.UUID) error
	// VerifyDeleteToken checks that token authorizes deleting the given note.
	VerifyDeleteToken(token string, id uuid.UUID) error
}

type NoteServiceImpl struct {
	repo     repository.NoteRepository
	lim      limiter.Limiter
	signKey  []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewNoteService constructs NoteService with required dependencies.
func NewNoteService(repo repository.NoteRepository, lim limiter.Limiter, signKey []byte, tokenTTL time.Duration) *NoteServiceImpl {
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}
	return &NoteServiceImpl{repo: repo, lim: lim, signKey: signKey, tokenTTL: tokenTTL, now: time.Now}
}

// Create validates the payload shape and inserts a new Active note.
// Validation rules:
// - ciphertext not empty, within maxPayloadBytes
// - iv exactly 12 bytes, auth tag exactly 16 bytes
// - maxViews >= 0 (0 = unlimited)
// - file metadata only when isFile
func (s *NoteServiceImpl) Create(ctx context.Context, in model.CreateNote) (Created, error) {
	if len(in.Ciphertext) == 0 {
		return Created{}, errors.New("validation: empty ciphertext")
	}
	if len(in.Ciphertext) > maxPayloadBytes {
		return Created{}, fmt.Errorf("validation: payload too large (%d > %d)", len(in.Ciphertext), maxPayloadBytes)
	}
	if len(in.IV) != notecrypt.IVLen {
		return Created{}, fmt.Errorf("validation: iv must be %d bytes", notecrypt.IVLen)
	}
	if len(in.AuthTag) != notecrypt.TagLen {
		return Created{}, fmt.Errorf("validation: auth tag must be %d bytes", notecrypt.TagLen)
	}
	if in.MaxViews < 0 {
		return Created{}, errors.New("validation: negative max_views")
	}
	if !in.IsFile && (in.FileName != "" || in.MimeType != "") {
		return Created{}, errors.New("validation: file metadata on a text note")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return Created{}, err
	}

	n := &model.Note{
		ID:           id,
		Ciphertext:   in.Ciphertext,
		EncryptedKey: in.EncryptedKey,
		IV:           in.IV,
		AuthTag:      in.AuthTag,
		IsFile:       in.IsFile,
		FileName:     in.FileName,
		MimeType:     in.MimeType,
		ExpiresAt:    in.ExpiresAt,
		MaxViews:     in.MaxViews,
		CreatedAt:    s.now().UTC(),
	}
	if in.Password != "" {
		hash, salt, err := pkgcrypto.HashPassword(in.Password)
		if err != nil {
			return Created{}, err
		}
		n.PasswordHash, n.Salt = hash, salt
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return Created{}, err
	}

	token, err := s.issueDeleteToken(id)
	if err != nil {
		return Created{}, err
	}
	return Created{ID: id, CreatedAt: n.CreatedAt, DeleteToken: token}, nil
}

// ReadWithIP enforces the destruction checks in spec order: tombstone first,
// then the password gate, then expiry and view cap inside the atomic consume.
func (s *NoteServiceImpl) ReadWithIP(ctx context.Context, id uuid.UUID, password, ip string) (*model.NoteView, error) {
	if id == uuid.Nil {
		return nil, errors.New("validation: empty id")
	}

	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Destroyed {
		return nil, errs.ErrGone
	}

	if n.Gated() {
		if err := s.checkPassword(ctx, n, password, ip); err != nil {
			return nil, err
		}
	}

	n, err = s.repo.Consume(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	return &model.NoteView{
		Ciphertext:   n.Ciphertext,
		EncryptedKey: n.EncryptedKey,
		IV:           n.IV,
		AuthTag:      n.AuthTag,
		IsFile:       n.IsFile,
		FileName:     n.FileName,
		MimeType:     n.MimeType,
		ViewCount:    n.ViewCount,
		MaxViews:     n.MaxViews,
	}, nil
}

// checkPassword applies the limiter and verifies the password against the
// stored PBKDF2 verifier. Missing and wrong passwords differ only in the
// sentinel, not in any other observable way.
func (s *NoteServiceImpl) checkPassword(ctx context.Context, n *model.Note, password, ip string) error {
	ipHash := limiter.HashIP(ip)
	noteID := n.ID.String()

	allowed, _, err := s.lim.Allow(ctx, noteID, ipHash)
	if err != nil {
		return err
	}
	if !allowed {
		return errs.ErrRateLimited
	}

	if password == "" {
		return errs.ErrPasswordRequired
	}
	if !pkgcrypto.VerifyPassword(password, n.Salt, n.PasswordHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, noteID, ipHash); ferr == nil && blocked {
			return errs.ErrRateLimited
		}
		return errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, noteID, ipHash)
	return nil
}

// Delete applies the forced tombstone transition. Repeating it is a no-op.
func (s *NoteServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("validation: empty id")
	}
	return s.repo.Destroy(ctx, id)
}

// issueDeleteToken creates a signed HS256 JWT whose subject is the note id.
func (s *NoteServiceImpl) issueDeleteToken(id uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.signKey)
}

// VerifyDeleteToken checks signature, validity window and subject match.
func (s *NoteServiceImpl) VerifyDeleteToken(token string, id uuid.UUID) error {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return errs.ErrUnauthorized
	}
	v := jwt.NewValidator(jwt.WithLeeway(30 * time.Second))
	if err := v.Validate(&claims); err != nil {
		return errs.ErrUnauthorized
	}
	if claims.Subject != id.String() {
		return errs.ErrUnauthorized
	}
	return nil
}
