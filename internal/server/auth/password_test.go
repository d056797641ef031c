package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.Contains(hash, ":") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Fatal("expected different salts to produce different hashes")
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	t.Parallel()

	for _, stored := range []string{"", "nocolon", "zz:zz", "abcd:zz"} {
		if VerifyPassword(stored, "anything") {
			t.Fatalf("malformed hash %q verified", stored)
		}
	}
}
