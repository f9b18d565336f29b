package crypto

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("HashPassword() returned plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("HashPassword() = %q, want bcrypt format", hash)
	}

	if !CheckPassword("secret1", hash) {
		t.Error("CheckPassword() rejected correct password")
	}
	if CheckPassword("secret2", hash) {
		t.Error("CheckPassword() accepted wrong password")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	h2, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ by salt")
	}
}

func TestCheckPasswordInvalidHash(t *testing.T) {
	if CheckPassword("secret1", "not-a-hash") {
		t.Error("CheckPassword() accepted a malformed hash")
	}
}
