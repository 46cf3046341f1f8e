package models

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PaymentScheduleItem is one monthly installment of a loan
type PaymentScheduleItem struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	LoanID        uuid.UUID       `json:"loan_id" db:"loan_id"`
	PaymentNumber int             `json:"payment_number" db:"payment_number"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	PrincipalDue  decimal.Decimal `json:"principal_due" db:"principal_due"`
	InterestDue   decimal.Decimal `json:"interest_due" db:"interest_due"`
	LateFee       decimal.Decimal `json:"late_fee" db:"late_fee"`
	IsPaid        bool            `json:"is_paid" db:"is_paid"`
	PaidDate      *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// PaymentScheduleSummary represents summary statistics for a payment schedule
type PaymentScheduleSummary struct {
	TotalPayments     int             `json:"total_payments"`
	TotalPrincipal    decimal.Decimal `json:"total_principal"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	TotalLateFees     decimal.Decimal `json:"total_late_fees"`
	PaidPayments      int             `json:"paid_payments"`
	PaidInterest      decimal.Decimal `json:"paid_interest"`
	RemainingPayments int             `json:"remaining_payments"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	OverduePayments   int             `json:"overdue_payments"`
	OverdueAmount     decimal.Decimal `json:"overdue_amount"`
	NextDueDate       *time.Time      `json:"next_due_date,omitempty"`
}

// TotalDue is everything owed on the installment
func (p *PaymentScheduleItem) TotalDue() decimal.Decimal {
	return p.PrincipalDue.Add(p.InterestDue).Add(p.LateFee)
}

// IsOverdue reports whether the installment is unpaid and past its due date
func (p *PaymentScheduleItem) IsOverdue(asOf time.Time) bool {
	return !p.IsPaid && p.DueDate.Before(Date(asOf))
}

// DaysOverdue returns how many days the installment is past due
func (p *PaymentScheduleItem) DaysOverdue(asOf time.Time) int {
	if !p.IsOverdue(asOf) {
		return 0
	}
	return DaysBetween(p.DueDate, asOf)
}

// MarkPaid marks the installment as paid on paidDate
func (p *PaymentScheduleItem) MarkPaid(paidDate time.Time) {
	d := Date(paidDate)
	p.IsPaid = true
	p.PaidDate = &d
}

// ApplyLateFee assesses the one-time late fee on an overdue installment.
// Items that are paid, not yet due, or already carry a fee are left as they are.
func (p *PaymentScheduleItem) ApplyLateFee(rate decimal.Decimal, asOf time.Time) decimal.Decimal {
	if p.IsOverdue(asOf) && p.LateFee.IsZero() {
		p.LateFee = p.PrincipalDue.Add(p.InterestDue).Mul(rate)
	}
	return p.LateFee
}

// GeneratePaymentSchedule builds an interest-only schedule with a balloon principal payment
func GeneratePaymentSchedule(loan *Loan) ([]*PaymentScheduleItem, error) {
	if loan.DisbursementDate == nil {
		return nil, errors.New("loan has no disbursement date")
	}
	if loan.TermMonths < 1 {
		return nil, errors.New("loan term must be at least one month")
	}

	start := Date(*loan.DisbursementDate)
	monthlyInterest := loan.MonthlyInterest()

	schedule := make([]*PaymentScheduleItem, 0, loan.TermMonths)
	for n := 1; n <= loan.TermMonths; n++ {
		principalDue := decimal.Zero
		if n == loan.TermMonths {
			principalDue = loan.Amount
		}

		schedule = append(schedule, &PaymentScheduleItem{
			ID:            uuid.New(),
			LoanID:        loan.ID,
			PaymentNumber: n,
			DueDate:       AddMonths(start, n),
			PrincipalDue:  principalDue,
			InterestDue:   monthlyInterest,
			LateFee:       decimal.Zero,
		})
	}

	return schedule, nil
}

// GenerateSchedule replaces the loan's schedule wholesale
func (l *Loan) GenerateSchedule() ([]*PaymentScheduleItem, error) {
	schedule, err := GeneratePaymentSchedule(l)
	if err != nil {
		return nil, err
	}
	l.Schedule = schedule
	return schedule, nil
}

// RegenerateSchedule rebuilds the schedule from the loan terms. Installments that already
// exist keep their ID, payment state and assessed late fee, matched by payment number.
func (l *Loan) RegenerateSchedule() ([]*PaymentScheduleItem, error) {
	schedule, err := GeneratePaymentSchedule(l)
	if err != nil {
		return nil, err
	}

	existing := make(map[int]*PaymentScheduleItem, len(l.Schedule))
	for _, item := range l.Schedule {
		existing[item.PaymentNumber] = item
	}

	for _, item := range schedule {
		old, ok := existing[item.PaymentNumber]
		if !ok {
			continue
		}
		item.ID = old.ID
		item.CreatedAt = old.CreatedAt
		item.LateFee = old.LateFee
		item.IsPaid = old.IsPaid
		item.PaidDate = old.PaidDate
	}

	l.Schedule = schedule
	return schedule, nil
}

// ScheduleItem returns the installment with the given id, or nil when the loan has none
func (l *Loan) ScheduleItem(id uuid.UUID) *PaymentScheduleItem {
	for _, item := range l.Schedule {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// UnpaidItems returns unpaid installments, oldest due first
func (l *Loan) UnpaidItems() []*PaymentScheduleItem {
	var unpaid []*PaymentScheduleItem
	for _, item := range l.Schedule {
		if !item.IsPaid {
			unpaid = append(unpaid, item)
		}
	}
	sort.SliceStable(unpaid, func(i, j int) bool {
		return unpaid[i].DueDate.Before(unpaid[j].DueDate)
	})
	return unpaid
}

// OldestUnpaidItem returns the unpaid installment with the earliest due date
func (l *Loan) OldestUnpaidItem() *PaymentScheduleItem {
	unpaid := l.UnpaidItems()
	if len(unpaid) == 0 {
		return nil
	}
	return unpaid[0]
}

// DaysPastDue counts days since the oldest unpaid installment fell due
func (l *Loan) DaysPastDue(asOf time.Time) int {
	oldest := l.OldestUnpaidItem()
	if oldest == nil {
		return 0
	}
	return oldest.DaysOverdue(asOf)
}

// ApplyLateFees assesses late fees on every overdue installment using the product rate.
// It returns the total newly assessed and the installments that changed.
func (l *Loan) ApplyLateFees(asOf time.Time) (decimal.Decimal, []*PaymentScheduleItem) {
	total := decimal.Zero
	if l.Product == nil {
		return total, nil
	}

	var changed []*PaymentScheduleItem
	for _, item := range l.Schedule {
		if !item.LateFee.IsZero() {
			continue
		}
		fee := item.ApplyLateFee(l.Product.LateFeeRate, asOf)
		if fee.IsPositive() {
			total = total.Add(fee)
			changed = append(changed, item)
		}
	}
	return total, changed
}

// CalculatePaymentScheduleSummary calculates summary statistics for a payment schedule
func CalculatePaymentScheduleSummary(schedule []*PaymentScheduleItem, asOf time.Time) *PaymentScheduleSummary {
	summary := &PaymentScheduleSummary{TotalPayments: len(schedule)}

	for _, item := range schedule {
		summary.TotalPrincipal = summary.TotalPrincipal.Add(item.PrincipalDue)
		summary.TotalInterest = summary.TotalInterest.Add(item.InterestDue)
		summary.TotalLateFees = summary.TotalLateFees.Add(item.LateFee)

		if item.IsPaid {
			summary.PaidPayments++
			summary.PaidInterest = summary.PaidInterest.Add(item.InterestDue)
			continue
		}

		summary.RemainingPayments++
		summary.RemainingAmount = summary.RemainingAmount.Add(item.TotalDue())
		if item.IsOverdue(asOf) {
			summary.OverduePayments++
			summary.OverdueAmount = summary.OverdueAmount.Add(item.TotalDue())
		}
		if summary.NextDueDate == nil || item.DueDate.Before(*summary.NextDueDate) {
			due := item.DueDate
			summary.NextDueDate = &due
		}
	}

	return summary
}

// percent renders a fraction as a percentage with one decimal
func percent(d decimal.Decimal) string {
	return d.Mul(hundred).StringFixed(1)
}
