package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies staff passwords with bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher with the default bcrypt cost
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.DefaultCost}
}

// NewPasswordHasherWithCost creates a PasswordHasher with a custom cost, mostly for tests
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// HashPassword returns the bcrypt hash of password
func (h *PasswordHasher) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash reports whether password matches hash
func (h *PasswordHasher) CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
