package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents a back-office staff member
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	Password  string    `json:"-" db:"-"`
	PassHash  string    `json:"-" db:"password_hash"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserRegistration represents user registration data
type UserRegistration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// UserLogin represents user login data
type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// ValidateRegistration validates user registration data
func (u *UserRegistration) ValidateRegistration() error {
	u.Email = strings.TrimSpace(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)

	if !emailPattern.MatchString(u.Email) {
		return errors.New("invalid email format")
	}

	if u.FullName == "" {
		return errors.New("full name is required")
	}

	if len(u.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	hasUppercase := regexp.MustCompile(`[A-Z]`).MatchString(u.Password)
	hasLowercase := regexp.MustCompile(`[a-z]`).MatchString(u.Password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(u.Password)

	if !hasUppercase || !hasLowercase || !hasNumber {
		return errors.New("password must contain at least one uppercase letter, one lowercase letter, and one number")
	}

	return nil
}

// ToUser converts UserRegistration to User
func (u *UserRegistration) ToUser() *User {
	return &User{
		ID:       uuid.New(),
		Email:    u.Email,
		FullName: u.FullName,
		Password: u.Password,
	}
}
