package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("hash must not be the plaintext")
	}
	if !CheckPassword("correct horse", hash) {
		t.Fatalf("valid password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Fatalf("invalid password accepted")
	}
}

func TestCheckPasswordGarbageHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("garbage hash must not validate")
	}
}
