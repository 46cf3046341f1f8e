package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType defines what a payment is applied to
type PaymentType string

const (
	PaymentTypeInterest  PaymentType = "Interest"
	PaymentTypePrincipal PaymentType = "Principal"
	PaymentTypeLateFee   PaymentType = "LateFee"
	PaymentTypeOther     PaymentType = "Other"
)

// PaymentMethod defines how money was received
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "Cash"
	PaymentMethodTransfer PaymentMethod = "Transfer"
	PaymentMethodCheck    PaymentMethod = "Check"
)

// Payment is an immutable record of money received on a loan
type Payment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	LoanID          uuid.UUID       `json:"loan_id" db:"loan_id"`
	ScheduleID      *uuid.UUID      `json:"schedule_id,omitempty" db:"schedule_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Type            PaymentType     `json:"payment_type" db:"payment_type"`
	PaymentDate     time.Time       `json:"payment_date" db:"payment_date"`
	Method          PaymentMethod   `json:"payment_method,omitempty" db:"payment_method"`
	ReferenceNumber string          `json:"reference_number,omitempty" db:"reference_number"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	RecordedBy      uuid.UUID       `json:"recorded_by" db:"recorded_by"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// PaymentRequest represents a payment being recorded by a back-office user
type PaymentRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Type            PaymentType     `json:"payment_type"`
	PaymentDate     string          `json:"payment_date,omitempty"` // YYYY-MM-DD, defaults to today
	Method          PaymentMethod   `json:"payment_method,omitempty"`
	ScheduleID      *uuid.UUID      `json:"schedule_id,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// Validate validates payment data
func (r *PaymentRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	var reasons []string
	switch r.Type {
	case PaymentTypeInterest, PaymentTypePrincipal, PaymentTypeLateFee, PaymentTypeOther:
	default:
		reasons = append(reasons, fmt.Sprintf("unknown payment type %q", r.Type))
	}
	switch r.Method {
	case "", PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCheck:
	default:
		reasons = append(reasons, fmt.Sprintf("unknown payment method %q", r.Method))
	}
	if r.PaymentDate != "" {
		if _, err := ParseDate(r.PaymentDate); err != nil {
			reasons = append(reasons, "payment date must be YYYY-MM-DD")
		}
	}
	return newValidationError(reasons)
}

// AcceptsPayment reports whether a payment of type t can be recorded on a loan in status s.
// A Closed loan has no interest left to collect but still receives principal, fees and other money.
func AcceptsPayment(s LoanStatus, t PaymentType) bool {
	switch s {
	case LoanStatusActive, LoanStatusMatured, LoanStatusDefaulted, LoanStatusLegalReady:
		return true
	case LoanStatusClosed:
		return t != PaymentTypeInterest
	}
	return false
}

// ValidatePayment checks a request against the loan it is recorded on.
// The loan schedule must be loaded when the request names an installment.
func (l *Loan) ValidatePayment(r *PaymentRequest) error {
	var reasons []string

	if !AcceptsPayment(l.Status, r.Type) {
		reasons = append(reasons, fmt.Sprintf("%s payments cannot be recorded on a %s loan", r.Type, l.Status))
	}
	if r.ScheduleID != nil && l.ScheduleItem(*r.ScheduleID) == nil {
		reasons = append(reasons, fmt.Sprintf("installment %s does not belong to loan %s", *r.ScheduleID, l.LoanNumber))
	}

	return newValidationError(reasons)
}

// ToPayment converts the request into a payment on loanID.
// today is used when the request carries no payment date.
func (r *PaymentRequest) ToPayment(loanID, recordedBy uuid.UUID, today time.Time) *Payment {
	paymentDate := Date(today)
	if r.PaymentDate != "" {
		if d, err := ParseDate(r.PaymentDate); err == nil {
			paymentDate = d
		}
	}

	return &Payment{
		ID:              uuid.New(),
		LoanID:          loanID,
		ScheduleID:      r.ScheduleID,
		Amount:          r.Amount,
		Type:            r.Type,
		PaymentDate:     paymentDate,
		Method:          r.Method,
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
		RecordedBy:      recordedBy,
	}
}

// Allocation reports what AllocatePayment did
type Allocation struct {
	Paid      []*PaymentScheduleItem `json:"paid"`
	Applied   decimal.Decimal        `json:"applied"`
	Unapplied decimal.Decimal        `json:"unapplied"`
	Closed    bool                   `json:"closed"`
}

// AllocatePayment applies an interest payment to unpaid installments, oldest due first.
// An installment is covered only by its interest plus late fee; a remainder that does not
// cover the next installment is not credited to it and is returned as Unapplied.
// When no unpaid installments remain the loan is closed.
func (l *Loan) AllocatePayment(amount decimal.Decimal, asOf time.Time) (*Allocation, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	result := &Allocation{Applied: decimal.Zero, Unapplied: amount}
	if len(l.Schedule) == 0 {
		return result, nil
	}

	remaining := amount
	for _, item := range l.UnpaidItems() {
		if !remaining.IsPositive() {
			break
		}
		itemTotal := item.InterestDue.Add(item.LateFee)
		if remaining.LessThan(itemTotal) {
			break
		}
		item.MarkPaid(asOf)
		remaining = remaining.Sub(itemTotal)
		result.Paid = append(result.Paid, item)
	}

	result.Applied = amount.Sub(remaining)
	result.Unapplied = remaining

	if len(l.UnpaidItems()) == 0 && l.Status != LoanStatusClosed {
		if err := l.TransitionTo(LoanStatusClosed); err != nil {
			return result, err
		}
		result.Closed = true
	}

	return result, nil
}

// PaymentTotals groups received money by payment type
type PaymentTotals struct {
	Interest        decimal.Decimal `json:"total_interest_paid"`
	Principal       decimal.Decimal `json:"total_principal_paid"`
	LateFees        decimal.Decimal `json:"total_fees_paid"`
	Other           decimal.Decimal `json:"total_other_paid"`
	Total           decimal.Decimal `json:"total_paid"`
	PaymentCount    int             `json:"payment_count"`
	LastPaymentDate *time.Time      `json:"last_payment_date,omitempty"`
}

// CalculatePaymentTotals sums payments by type
func CalculatePaymentTotals(payments []*Payment) PaymentTotals {
	totals := PaymentTotals{PaymentCount: len(payments)}

	for _, p := range payments {
		switch p.Type {
		case PaymentTypeInterest:
			totals.Interest = totals.Interest.Add(p.Amount)
		case PaymentTypePrincipal:
			totals.Principal = totals.Principal.Add(p.Amount)
		case PaymentTypeLateFee:
			totals.LateFees = totals.LateFees.Add(p.Amount)
		default:
			totals.Other = totals.Other.Add(p.Amount)
		}
		totals.Total = totals.Total.Add(p.Amount)

		if totals.LastPaymentDate == nil || p.PaymentDate.After(*totals.LastPaymentDate) {
			d := p.PaymentDate
			totals.LastPaymentDate = &d
		}
	}

	return totals
}

// PaymentResult is returned when a payment is recorded
type PaymentResult struct {
	Payment    *Payment    `json:"payment"`
	Allocation *Allocation `json:"allocation,omitempty"`
	Status     LoanStatus  `json:"loan_status"`
}
