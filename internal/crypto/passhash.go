// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-SHA512 parameters.
const (
	pbkdf2Iterations = 210_000
	pbkdf2KeyLen     = 64

	// SaltLen is the size of per-note password salts.
	SaltLen = 32
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword returns a fresh salt and the PBKDF2-SHA512 verifier of password.
func HashPassword(password string) (hash, salt []byte, err error) {
	salt, err = RandBytes(SaltLen)
	if err != nil {
		return nil, nil, err
	}
	return HashPasswordWithSalt(password, salt), salt, nil
}

// HashPasswordWithSalt derives the verifier for password using the given salt.
func HashPasswordWithSalt(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
}

// VerifyPassword verifies password against the stored verifier and salt.
func VerifyPassword(password string, salt, expected []byte) bool {
	got := HashPasswordWithSalt(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
