package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("expected correct password to verify")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("expected wrong password to fail")
	}
	if CheckPassword(hash, "") {
		t.Error("expected empty password to fail")
	}
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "anything") {
		t.Error("expected malformed hash to fail verification")
	}
}
