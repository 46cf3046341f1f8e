package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus defines the lifecycle status of a loan
type LoanStatus string

const (
	LoanStatusDraft       LoanStatus = "Draft"
	LoanStatusUnderReview LoanStatus = "UnderReview"
	LoanStatusApproved    LoanStatus = "Approved"
	LoanStatusActive      LoanStatus = "Active"
	LoanStatusMatured     LoanStatus = "Matured"
	LoanStatusDefaulted   LoanStatus = "Defaulted"
	LoanStatusLegalReady  LoanStatus = "LegalReady"
	LoanStatusClosed      LoanStatus = "Closed"
)

const loanNumberPrefix = "ANC"

// Valid reports whether s is one of the defined statuses
func (s LoanStatus) Valid() bool {
	_, ok := loanStatusTransitions[s]
	return ok
}

// Loan is a collateral-backed loan together with the entities the engine works on.
// The aggregate fields are loaded by the repository layer and are never stored on the loan row.
type Loan struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	LoanNumber       string          `json:"loan_number" db:"loan_number"`
	BorrowerID       uuid.UUID       `json:"borrower_id" db:"borrower_id"`
	PropertyID       uuid.UUID       `json:"property_id" db:"property_id"`
	ProductID        uuid.UUID       `json:"product_id" db:"product_id"`
	Amount           decimal.Decimal `json:"amount" db:"loan_amount"`
	InterestRate     decimal.Decimal `json:"interest_rate" db:"interest_rate"` // monthly
	TermMonths       int             `json:"term_months" db:"term_months"`
	LTV              decimal.Decimal `json:"ltv" db:"ltv"`
	Status           LoanStatus      `json:"status" db:"status"`
	ApplicationDate  time.Time       `json:"application_date" db:"application_date"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty" db:"approved_by"`
	ApprovalNotes    string          `json:"approval_notes,omitempty" db:"approval_notes"`
	DisbursementDate *time.Time      `json:"disbursement_date,omitempty" db:"disbursement_date"`
	MaturityDate     *time.Time      `json:"maturity_date,omitempty" db:"maturity_date"`
	CreatedBy        uuid.UUID       `json:"created_by" db:"created_by"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`

	Product    *LoanProduct           `json:"product,omitempty" db:"-"`
	Borrower   *Borrower              `json:"borrower,omitempty" db:"-"`
	Collateral *Property              `json:"collateral,omitempty" db:"-"`
	Schedule   []*PaymentScheduleItem `json:"schedule,omitempty" db:"-"`
	Payments   []*Payment             `json:"payments,omitempty" db:"-"`
	Documents  []*Document            `json:"documents,omitempty" db:"-"`
}

// LoanRequest represents a loan application entered by a back-office user
type LoanRequest struct {
	BorrowerID   uuid.UUID       `json:"borrower_id"`
	PropertyID   uuid.UUID       `json:"property_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Amount       decimal.Decimal `json:"amount"`
	TermMonths   int             `json:"term_months"`
	InterestRate decimal.Decimal `json:"interest_rate,omitempty"` // Optional, defaults to the product rate
}

// Validate checks the request against the product it is filed under.
// All violations are reported together.
func (r *LoanRequest) Validate(product *LoanProduct) error {
	var reasons []string

	if r.BorrowerID == uuid.Nil {
		reasons = append(reasons, "borrower is required")
	}
	if r.PropertyID == uuid.Nil {
		reasons = append(reasons, "property is required")
	}
	if !r.Amount.IsPositive() {
		reasons = append(reasons, "loan amount must be positive")
	}
	if r.InterestRate.IsNegative() {
		reasons = append(reasons, "interest rate cannot be negative")
	}

	if product == nil {
		reasons = append(reasons, "loan product is required")
		return newValidationError(reasons)
	}
	if !product.IsActive {
		reasons = append(reasons, fmt.Sprintf("loan product %s is not active", product.Name))
	}
	if r.TermMonths < product.MinTermMonths || r.TermMonths > product.MaxTermMonths {
		reasons = append(reasons, fmt.Sprintf("term must be between %d and %d months",
			product.MinTermMonths, product.MaxTermMonths))
	}

	return newValidationError(reasons)
}

// ToLoan converts the request into a Draft loan
func (r *LoanRequest) ToLoan(product *LoanProduct, collateral *Property, number string, createdBy uuid.UUID, today time.Time) *Loan {
	rate := r.InterestRate
	if rate.IsZero() {
		rate = product.InterestRate
	}

	var marketValue decimal.Decimal
	if collateral != nil {
		marketValue = collateral.MarketValue
	}

	return &Loan{
		ID:              uuid.New(),
		LoanNumber:      number,
		BorrowerID:      r.BorrowerID,
		PropertyID:      r.PropertyID,
		ProductID:       product.ID,
		Amount:          r.Amount,
		InterestRate:    rate,
		TermMonths:      r.TermMonths,
		LTV:             CalculateLTV(r.Amount, marketValue),
		Status:          LoanStatusDraft,
		ApplicationDate: Date(today),
		CreatedBy:       createdBy,
		Product:         product,
		Collateral:      collateral,
	}
}

// CalculateLTV returns the loan-to-value ratio, zero when the value is unknown
func CalculateLTV(amount, marketValue decimal.Decimal) decimal.Decimal {
	if !marketValue.IsPositive() {
		return decimal.Zero
	}
	return amount.Div(marketValue)
}

// LoanNumberPrefix returns the monthly prefix, e.g. ANC-202401
func LoanNumberPrefix(t time.Time) string {
	return fmt.Sprintf("%s-%d%02d", loanNumberPrefix, t.Year(), int(t.Month()))
}

// FormatLoanNumber builds a reference number such as ANC-202401-0007
func FormatLoanNumber(t time.Time, seq int) string {
	return fmt.Sprintf("%s-%04d", LoanNumberPrefix(t), seq)
}

// ParseLoanNumberSequence extracts the monthly sequence from a reference number
func ParseLoanNumberSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, errors.New("malformed loan number")
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed loan number: %w", err)
	}
	return seq, nil
}

// NextLoanSequence returns the sequence following the highest one among numbers.
// Sequences are compared as integers, so ANC-202401-10000 follows ANC-202401-9999.
func NextLoanSequence(numbers []string) (int, error) {
	last := 0
	for _, number := range numbers {
		seq, err := ParseLoanNumberSequence(number)
		if err != nil {
			return 0, err
		}
		if seq > last {
			last = seq
		}
	}
	return last + 1, nil
}

// MonthlyInterest is the flat interest charged every period
func (l *Loan) MonthlyInterest() decimal.Decimal {
	return l.Amount.Mul(l.InterestRate)
}

// TotalInterest is the interest charged over the whole term
func (l *Loan) TotalInterest() decimal.Decimal {
	return l.MonthlyInterest().Mul(decimal.NewFromInt(int64(l.TermMonths)))
}

// TotalRepayment is principal plus total interest
func (l *Loan) TotalRepayment() decimal.Decimal {
	return l.Amount.Add(l.TotalInterest())
}

// CalculateMaturityDate returns start plus the loan term
func (l *Loan) CalculateMaturityDate(start time.Time) time.Time {
	return AddMonths(start, l.TermMonths)
}

// LoanFilter narrows loan listings. Empty fields match everything.
type LoanFilter struct {
	Statuses   []LoanStatus
	BorrowerID *uuid.UUID
}
