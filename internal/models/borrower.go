package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VerificationStatus defines the KYC status of a borrower
type VerificationStatus string

const (
	VerificationPending    VerificationStatus = "Pending"
	VerificationInProgress VerificationStatus = "InProgress"
	VerificationVerified   VerificationStatus = "Verified"
	VerificationRejected   VerificationStatus = "Rejected"
)

// RiskTier is the internal risk classification of a borrower
type RiskTier string

const (
	RiskTierLow    RiskTier = "Low"
	RiskTierMedium RiskTier = "Medium"
	RiskTierHigh   RiskTier = "High"
)

// Borrower represents a person applying for loans
type Borrower struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	FullName           string             `json:"full_name" db:"full_name"`
	DPI                string             `json:"-" db:"dpi"`
	NIT                string             `json:"nit,omitempty" db:"nit"`
	Phone              string             `json:"phone" db:"phone"`
	Email              string             `json:"email,omitempty" db:"email"`
	Address            string             `json:"address,omitempty" db:"address"`
	MonthlyIncome      decimal.Decimal    `json:"monthly_income" db:"monthly_income"`
	VerificationStatus VerificationStatus `json:"verification_status" db:"verification_status"`
	VerifiedBy         *uuid.UUID         `json:"verified_by,omitempty" db:"verified_by"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty" db:"verified_at"`
	RiskTier           RiskTier           `json:"risk_tier" db:"risk_tier"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// BorrowerCreate represents borrower registration data
type BorrowerCreate struct {
	FullName      string          `json:"full_name"`
	DPI           string          `json:"dpi"`
	NIT           string          `json:"nit,omitempty"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email,omitempty"`
	Address       string          `json:"address,omitempty"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
}

// Validate validates borrower registration data
func (b *BorrowerCreate) Validate() error {
	b.FullName = strings.TrimSpace(b.FullName)
	b.DPI = strings.TrimSpace(b.DPI)
	b.Phone = strings.TrimSpace(b.Phone)
	b.Email = strings.TrimSpace(b.Email)

	var reasons []string
	if b.FullName == "" {
		reasons = append(reasons, "full name is required")
	}
	if len(b.DPI) != 13 {
		reasons = append(reasons, "DPI must have 13 digits")
	}
	if b.Phone == "" {
		reasons = append(reasons, "phone is required")
	}
	if b.MonthlyIncome.IsNegative() {
		reasons = append(reasons, "monthly income cannot be negative")
	}
	return newValidationError(reasons)
}

// ToBorrower converts BorrowerCreate to Borrower
func (b *BorrowerCreate) ToBorrower() *Borrower {
	return &Borrower{
		ID:                 uuid.New(),
		FullName:           b.FullName,
		DPI:                b.DPI,
		NIT:                b.NIT,
		Phone:              b.Phone,
		Email:              b.Email,
		Address:            b.Address,
		MonthlyIncome:      b.MonthlyIncome,
		VerificationStatus: VerificationPending,
		RiskTier:           RiskTierMedium,
	}
}

// IsVerified reports whether KYC is complete
func (b *Borrower) IsVerified() bool {
	return b.VerificationStatus == VerificationVerified
}

// MaskedDPI hides everything but the last four digits
func (b *Borrower) MaskedDPI() string {
	if len(b.DPI) < 4 {
		return b.DPI
	}
	return strings.Repeat("*", len(b.DPI)-4) + b.DPI[len(b.DPI)-4:]
}

// Verify marks the borrower as verified by user
func (b *Borrower) Verify(by uuid.UUID, at time.Time) {
	b.VerificationStatus = VerificationVerified
	b.VerifiedBy = &by
	b.VerifiedAt = &at
}
