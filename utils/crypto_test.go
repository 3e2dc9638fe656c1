package utils

import (
	"regexp"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Str0ngP@ss", "pepper-1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "Str0ngP@ss" || hash == "" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if !VerifyPassword("Str0ngP@ss", hash, "pepper-1") {
		t.Error("correct password and pepper must verify")
	}
	if VerifyPassword("WrongP@ss1", hash, "pepper-1") {
		t.Error("wrong password must not verify")
	}
	if VerifyPassword("Str0ngP@ss", hash, "pepper-2") {
		t.Error("wrong pepper must not verify")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("Str0ngP@ss", "pepper-1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := HashPassword("Str0ngP@ss", "pepper-1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password must differ")
	}
}

func TestGenerateHMAC(t *testing.T) {
	key := []byte("signing-key")

	mac := GenerateHMAC("payload", key)
	if mac == "" {
		t.Fatal("expected non-empty mac")
	}
	if !ValidateHMAC("payload", mac, key) {
		t.Error("valid mac must validate")
	}
	if ValidateHMAC("tampered", mac, key) {
		t.Error("mac must not validate for different data")
	}
	if ValidateHMAC("payload", mac, []byte("other-key")) {
		t.Error("mac must not validate under a different key")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken failed: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(token))
	}

	other, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken failed: %v", err)
	}
	if token == other {
		t.Error("tokens must be unique")
	}
}

func TestGenerateReferenceSuffix(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		suffix := GenerateReferenceSuffix(9)
		if !pattern.MatchString(suffix) {
			t.Fatalf("suffix %q does not match expected alphabet", suffix)
		}
		seen[suffix] = true
	}
	if len(seen) < 2 {
		t.Error("suffixes must vary")
	}
}
