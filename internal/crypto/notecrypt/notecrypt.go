// Package notecrypt contains the client-side authenticated-encryption codec.
//
// Every note gets a fresh random 256-bit key and 12-byte IV; the AES-GCM tag
// is carried separately from the ciphertext so the server can persist the
// payload as an opaque 3-tuple while the key travels only in the share-link
// fragment.
package notecrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"github.com/m-yakovlev/sealnote/internal/model"
)

// Sizes of codec fields.
const (
	KeyLen = 32
	IVLen  = 12
	TagLen = 16
)

// ErrDecryptionFailed is the single opaque decryption error. It deliberately
// does not distinguish a wrong key from corrupted data.
var ErrDecryptionFailed = errors.New("decryption failed")

// Rand returns n cryptographically secure random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// Encrypt seals plaintext under a fresh key and IV and returns the 4-tuple.
// The IV is never reused: both key and IV are freshly generated per call.
func Encrypt(plaintext []byte) (*model.EncryptedPayload, error) {
	key, err := Rand(KeyLen)
	if err != nil {
		return nil, err
	}
	iv, err := Rand(IVLen)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	sealed := aead.Seal(nil, iv, plaintext, nil)
	// GCM appends the tag to the ciphertext; split it off.
	cut := len(sealed) - TagLen
	return &model.EncryptedPayload{
		Ciphertext: sealed[:cut],
		IV:         iv,
		AuthTag:    sealed[cut:],
		Key:        key,
	}, nil
}

// Decrypt opens ciphertext||tag with the given key and IV. Any malformed
// field or tag mismatch yields ErrDecryptionFailed; no partial output is
// ever returned.
func Decrypt(ciphertext, iv, authTag, key []byte) ([]byte, error) {
	if len(key) != KeyLen || len(iv) != IVLen || len(authTag) != TagLen {
		return nil, ErrDecryptionFailed
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	sealed := make([]byte, 0, len(ciphertext)+len(authTag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)
	plaintext, err := aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
