// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// EncryptedPayload is the client-produced ciphertext 4-tuple. The server stores
// the first three fields opaquely; Key exists only on the client and travels
// exclusively in the share-link fragment.
type EncryptedPayload struct {
	Ciphertext []byte // AES-GCM ciphertext, same length as plaintext
	IV         []byte // 12 bytes, fresh per encryption
	AuthTag    []byte // 16 bytes, GCM tag
	Key        []byte // 32 bytes, never persisted server-side
}

// Note is a single server-owned record with its destruction conditions.
// The server never holds the encryption key.
type Note struct {
	ID         uuid.UUID // opaque PK, generated at creation
	Ciphertext []byte
	// EncryptedKey is an opaque client key-wrapping blob stored and echoed
	// verbatim. It is never the raw note key; the server cannot use it.
	EncryptedKey []byte
	IV           []byte
	AuthTag      []byte

	IsFile   bool
	FileName string // empty unless IsFile
	MimeType string // empty unless IsFile

	ExpiresAt *time.Time // nil = no time limit
	MaxViews  int        // 0 = unlimited
	ViewCount int        // monotonically non-decreasing

	PasswordHash []byte // both set or both empty
	Salt         []byte

	Destroyed bool // one-way false->true
	CreatedAt time.Time
}

// Gated reports whether reads require a password.
func (n *Note) Gated() bool { return len(n.PasswordHash) > 0 }

// CreateNote is the client intent to store a new note.
type CreateNote struct {
	Ciphertext   []byte
	EncryptedKey []byte
	IV           []byte
	AuthTag      []byte
	IsFile       bool
	FileName     string
	MimeType     string
	ExpiresAt    *time.Time
	MaxViews     int
	Password     string // optional; hashed by the service, never stored
}

// NoteView is what a successful read returns: payload fields plus the
// post-increment view counter.
type NoteView struct {
	Ciphertext   []byte
	EncryptedKey []byte
	IV           []byte
	AuthTag      []byte
	IsFile       bool
	FileName     string
	MimeType     string
	ViewCount    int
	MaxViews     int
}

// Severity ranks threat-scanner rules.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the wire name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Score maps a severity to its numeric risk contribution.
func (s Severity) Score() int {
	switch s {
	case SeverityCritical:
		return 100
	case SeverityHigh:
		return 70
	case SeverityMedium:
		return 40
	default:
		return 20
	}
}

// ThreatAlert records the first match of one scanner rule.
type ThreatAlert struct {
	Category string
	Severity Severity
	Message  string
	Match    string
}

// ThreatAnalysis is the advisory result of scanning plaintext before
// submission. Ephemeral and client-only; never sent to the server.
type ThreatAnalysis struct {
	Level  Severity
	Score  int // 0..100, max over matched rules
	Alerts []ThreatAlert
	Masked string // set when Score >= 70
}
