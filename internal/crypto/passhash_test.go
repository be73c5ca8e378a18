package crypto

import (
	"bytes"
	"testing"
)

func TestRandBytes_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	const n = 64
	a, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two subsequent RandBytes(%d) are equal — looks non-random", n)
	}
}

func TestHashPassword_FreshSaltEveryTime(t *testing.T) {
	t.Parallel()

	h1, s1, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if len(s1) != SaltLen {
		t.Fatalf("salt len=%d, want=%d", len(s1), SaltLen)
	}
	h2, s2, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword(2): %v", err)
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("two hashes of the same password share a salt")
	}
	if bytes.Equal(h1, h2) {
		t.Fatalf("different salts must give different verifiers")
	}
}

func TestHashPasswordWithSalt_Deterministic(t *testing.T) {
	t.Parallel()

	salt := []byte("salty-salt-salty-salt-salty-salt")
	h1 := HashPasswordWithSalt("p@ssw0rd", salt)
	h2 := HashPasswordWithSalt("p@ssw0rd", salt)
	if !bytes.Equal(h1, h2) {
		t.Fatalf("verifier not deterministic for same input")
	}
	if bytes.Equal(h1, HashPasswordWithSalt("p@ssw0rd!", salt)) {
		t.Fatalf("verifier should differ when password differs")
	}
	if bytes.Equal(h1, HashPasswordWithSalt("p@ssw0rd", []byte("another-salt--another-salt------"))) {
		t.Fatalf("verifier should differ when salt differs")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, salt, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !VerifyPassword("correct horse battery staple", salt, hash) {
		t.Fatalf("VerifyPassword: expected true for correct password")
	}
	if VerifyPassword("wrong", salt, hash) {
		t.Fatalf("VerifyPassword: expected false for wrong password")
	}
	if VerifyPassword("", salt, hash) {
		t.Fatalf("VerifyPassword: expected false for empty password")
	}
	if VerifyPassword("correct horse battery staple", []byte("wrong-salt"), hash) {
		t.Fatalf("VerifyPassword: expected false for wrong salt")
	}
}
