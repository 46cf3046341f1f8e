package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanSummary is a read-only snapshot of a loan's balances and delinquency
type LoanSummary struct {
	LoanID               uuid.UUID       `json:"loan_id"`
	LoanNumber           string          `json:"loan_number"`
	Status               LoanStatus      `json:"status"`
	AsOf                 time.Time       `json:"as_of"`
	LoanAmount           decimal.Decimal `json:"loan_amount"`
	MonthlyInterest      decimal.Decimal `json:"monthly_interest"`
	TotalInterest        decimal.Decimal `json:"total_interest"`
	TotalRepayment       decimal.Decimal `json:"total_repayment"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	OutstandingInterest  decimal.Decimal `json:"outstanding_interest"`
	LateFeesAssessed     decimal.Decimal `json:"late_fees_assessed"`
	UnpaidItems          int             `json:"unpaid_items"`
	OverdueItems         int             `json:"overdue_items"`
	OverdueAmount        decimal.Decimal `json:"overdue_amount"`
	DaysPastDue          int             `json:"days_past_due"`
	Stage                CollectionStage `json:"stage"`
	Paid                 PaymentTotals   `json:"paid"`
}

// Summary aggregates schedule and payments as of the given date. It has no side effects.
func (l *Loan) Summary(asOf time.Time, policy CollectionPolicy) *LoanSummary {
	asOf = Date(asOf)
	paid := CalculatePaymentTotals(l.Payments)

	interestDue := decimal.Zero
	lateFees := decimal.Zero
	overdueAmount := decimal.Zero
	unpaid, overdue := 0, 0

	for _, item := range l.Schedule {
		if !item.DueDate.After(asOf) {
			interestDue = interestDue.Add(item.InterestDue)
		}
		lateFees = lateFees.Add(item.LateFee)
		if item.IsPaid {
			continue
		}
		unpaid++
		if item.IsOverdue(asOf) {
			overdue++
			overdueAmount = overdueAmount.Add(item.TotalDue())
		}
	}

	dpd := l.DaysPastDue(asOf)

	return &LoanSummary{
		LoanID:               l.ID,
		LoanNumber:           l.LoanNumber,
		Status:               l.Status,
		AsOf:                 asOf,
		LoanAmount:           l.Amount,
		MonthlyInterest:      l.MonthlyInterest(),
		TotalInterest:        l.TotalInterest(),
		TotalRepayment:       l.TotalRepayment(),
		OutstandingPrincipal: l.Amount.Sub(paid.Principal),
		OutstandingInterest:  interestDue.Sub(paid.Interest),
		LateFeesAssessed:     lateFees,
		UnpaidItems:          unpaid,
		OverdueItems:         overdue,
		OverdueAmount:        overdueAmount,
		DaysPastDue:          dpd,
		Stage:                policy.Stage(dpd),
		Paid:                 paid,
	}
}
