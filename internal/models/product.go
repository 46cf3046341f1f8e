package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanProduct is a named template constraining the loans filed under it
type LoanProduct struct {
	ID            uuid.UUID       `json:"id" db:"id" yaml:"-"`
	Name          string          `json:"name" db:"name" yaml:"name"`
	Description   string          `json:"description,omitempty" db:"description" yaml:"description"`
	MinAmount     decimal.Decimal `json:"min_amount" db:"min_amount" yaml:"min_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount" db:"max_amount" yaml:"max_amount"`
	MinTermMonths int             `json:"min_term_months" db:"min_term_months" yaml:"min_term_months"`
	MaxTermMonths int             `json:"max_term_months" db:"max_term_months" yaml:"max_term_months"`
	InterestRate  decimal.Decimal `json:"interest_rate" db:"interest_rate" yaml:"interest_rate"` // monthly
	MaxLTV        decimal.Decimal `json:"max_ltv" db:"max_ltv" yaml:"max_ltv"`
	LateFeeRate   decimal.Decimal `json:"late_fee_rate" db:"late_fee_rate" yaml:"late_fee_rate"`
	IsActive      bool            `json:"is_active" db:"is_active" yaml:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at" yaml:"-"`
}

// Validate checks the product bands are coherent
func (p *LoanProduct) Validate() error {
	var reasons []string

	if p.Name == "" {
		reasons = append(reasons, "name is required")
	}
	if !p.MinAmount.IsPositive() {
		reasons = append(reasons, "minimum amount must be positive")
	}
	if p.MaxAmount.LessThan(p.MinAmount) {
		reasons = append(reasons, "maximum amount must not be below minimum amount")
	}
	if p.MinTermMonths < 1 {
		reasons = append(reasons, "minimum term must be at least one month")
	}
	if p.MaxTermMonths < p.MinTermMonths {
		reasons = append(reasons, "maximum term must not be below minimum term")
	}
	if p.InterestRate.IsNegative() {
		reasons = append(reasons, "interest rate cannot be negative")
	}
	if !p.MaxLTV.IsPositive() || p.MaxLTV.GreaterThan(decimal.NewFromInt(1)) {
		reasons = append(reasons, "maximum LTV must be in (0, 1]")
	}
	if p.LateFeeRate.IsNegative() {
		reasons = append(reasons, "late fee rate cannot be negative")
	}

	return newValidationError(reasons)
}
