package crypto

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasherWithCost(bcrypt.MinCost)

	hash, err := hasher.HashPassword("Secret123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash == "Secret123" {
		t.Error("Expected hash to differ from the password")
	}
	if !hasher.CheckPasswordHash("Secret123", hash) {
		t.Error("Expected password to match its hash")
	}
	if hasher.CheckPasswordHash("secret123", hash) {
		t.Error("Expected wrong password not to match")
	}
}
