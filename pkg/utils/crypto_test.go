package utils

import (
	"testing"
)

func TestGenerateOTPCode_AlwaysSixDigits(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateOTPCode()
		if err != nil {
			t.Fatalf("Failed to generate code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", code)
		}
		if !IsValidOTPCode(code) {
			t.Fatalf("generated code failed validation: %q", code)
		}
		if code[0] == '0' {
			t.Fatalf("code outside 100000-999999 range: %q", code)
		}
	}
}

func TestGenerateOTPCode_NotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTPCode()
		if err != nil {
			t.Fatalf("Failed to generate code: %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("expected distinct codes across generations")
	}
}

func TestGenerateSessionToken(t *testing.T) {
	token1, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	token2, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if len(token1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(token1))
	}
	if token1 == token2 {
		t.Error("expected unique tokens")
	}
}
