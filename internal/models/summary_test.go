package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestLoanSummary(t *testing.T) {
	loan := newActiveLoan(t, "100000", "0.10", 3, date(2024, 1, 1))
	if _, err := loan.AllocatePayment(dec("10000"), date(2024, 2, 1)); err != nil {
		t.Fatalf("Failed to allocate payment: %v", err)
	}
	loan.Payments = []*Payment{
		{ID: uuid.New(), Amount: dec("10000"), Type: PaymentTypeInterest, PaymentDate: date(2024, 2, 1)},
	}
	loan.ApplyLateFees(date(2024, 3, 10))

	before := len(loan.UnpaidItems())
	summary := loan.Summary(date(2024, 3, 10), DefaultCollectionPolicy())

	if !summary.OutstandingPrincipal.Equal(dec("100000")) {
		t.Errorf("Expected outstanding principal 100000, got %s", summary.OutstandingPrincipal)
	}
	if !summary.OutstandingInterest.Equal(dec("10000")) {
		t.Errorf("Expected outstanding interest 10000, got %s", summary.OutstandingInterest)
	}
	if !summary.LateFeesAssessed.Equal(dec("500")) {
		t.Errorf("Expected late fees 500, got %s", summary.LateFeesAssessed)
	}
	if summary.UnpaidItems != 2 || summary.OverdueItems != 1 {
		t.Errorf("Expected 2 unpaid and 1 overdue, got %d / %d", summary.UnpaidItems, summary.OverdueItems)
	}
	if !summary.OverdueAmount.Equal(dec("10500")) {
		t.Errorf("Expected overdue amount 10500, got %s", summary.OverdueAmount)
	}
	if summary.DaysPastDue != 9 || summary.Stage != StageReminder {
		t.Errorf("Expected 9 days past due in Reminder, got %d / %s", summary.DaysPastDue, summary.Stage)
	}
	if !summary.TotalInterest.Equal(dec("30000")) || !summary.TotalRepayment.Equal(dec("130000")) {
		t.Errorf("Unexpected totals: %s / %s", summary.TotalInterest, summary.TotalRepayment)
	}
	if !summary.Paid.Interest.Equal(dec("10000")) {
		t.Errorf("Expected interest paid 10000, got %s", summary.Paid.Interest)
	}

	if after := len(loan.UnpaidItems()); after != before || loan.Status != LoanStatusActive {
		t.Error("Expected summary to have no side effects")
	}
}

func TestLoanSummary_PrincipalPayment(t *testing.T) {
	loan := newActiveLoan(t, "100000", "0.10", 3, date(2024, 1, 1))
	loan.Payments = []*Payment{
		{ID: uuid.New(), Amount: dec("40000"), Type: PaymentTypePrincipal, PaymentDate: date(2024, 1, 20)},
	}

	summary := loan.Summary(date(2024, 1, 25), DefaultCollectionPolicy())

	if !summary.OutstandingPrincipal.Equal(dec("60000")) {
		t.Errorf("Expected outstanding principal 60000, got %s", summary.OutstandingPrincipal)
	}
	if !summary.OutstandingInterest.IsZero() {
		t.Errorf("Expected no interest due yet, got %s", summary.OutstandingInterest)
	}
	if summary.Stage != StageCurrent {
		t.Errorf("Expected stage Current, got %s", summary.Stage)
	}
}
