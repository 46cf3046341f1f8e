package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestAllocatePayment_FirstInstallment(t *testing.T) {
	loan := newActiveLoan(t, "100000", "0.10", 3, date(2024, 1, 1))

	result, err := loan.AllocatePayment(dec("10000"), date(2024, 2, 1))
	if err != nil {
		t.Fatalf("Failed to allocate payment: %v", err)
	}

	if !loan.Schedule[0].IsPaid {
		t.Error("Expected first item to be paid")
	}
	if loan.Schedule[0].PaidDate == nil || !loan.Schedule[0].PaidDate.Equal(date(2024, 2, 1)) {
		t.Errorf("Expected paid date 2024-02-01, got %v", loan.Schedule[0].PaidDate)
	}
	if loan.Schedule[1].IsPaid || loan.Schedule[2].IsPaid {
		t.Error("Expected later items to remain unpaid")
	}
	if loan.Status != LoanStatusActive {
		t.Errorf("Expected status Active, got %s", loan.Status)
	}
	if result.Closed || len(result.Paid) != 1 || !result.Unapplied.IsZero() {
		t.Errorf("Unexpected allocation result: %+v", result)
	}
}

func TestAllocatePayment_ExactPayoffClosesLoan(t *testing.T) {
	loan := newActiveLoan(t, "100000", "0.10", 3, date(2024, 1, 1))
	loan.ApplyLateFees(date(2024, 2, 15))

	total := decimal.Zero
	for _, item := range loan.UnpaidItems() {
		total = total.Add(item.InterestDue).Add(item.LateFee)
	}

	result, err := loan.AllocatePayment(total, date(2024, 2, 15))
	if err != nil {
		t.Fatalf("Failed to allocate payment: %v", err)
	}

	if n := len(loan.UnpaidItems()); n != 0 {
		t.Errorf("Expected no unpaid items, got %d", n)
	}
	if loan.Status != LoanStatusClosed || !result.Closed {
		t.Errorf("Expected loan to be closed, got %s", loan.Status)
	}
	if !result.Applied.Equal(total) {
		t.Errorf("Expected %s applied, got %s", total, result.Applied)
	}
}

func TestAllocatePayment_PartialRemainderIsReported(t *testing.T) {
	loan := newActiveLoan(t, "100000", "0.10", 3, date(2024, 1, 1))

	result, err := loan.AllocatePayment(dec("15000"), date(2024, 2, 1))
	if err != nil {
		t.Fatalf("Failed to allocate payment: %v", err)
	}

	if !result.Applied.Equal(dec("10000")) || !result.Unapplied.Equal(dec("5000")) {
		t.Errorf("Expected 10000 applied and 5000 unapplied, got %s / %s", result.Applied, result.Unapplied)
	}
	if loan.Schedule[1].IsPaid {
		t.Error("Expected partial payment not to mark the second item paid")
	}
	if !loan.Schedule[1].InterestDue.Equal(dec("10000")) {
		t.Error("Expected partial payment not to reduce the second item's interest")
	}
}

func TestAllocatePayment_Monotonic(t *testing.T) {
	amounts := []string{"1", "9999.99", "10000", "15000", "20000", "29999", "30000", "45000"}

	for _, amount := range amounts {
		loan := newActiveLoan(t, "100000", "0.10", 3, date(2024, 1, 1))
		loan.Schedule[0].MarkPaid(date(2024, 2, 1))
		before := len(loan.UnpaidItems())

		if _, err := loan.AllocatePayment(dec(amount), date(2024, 3, 1)); err != nil {
			t.Fatalf("Failed to allocate %s: %v", amount, err)
		}
		if after := len(loan.UnpaidItems()); after > before {
			t.Errorf("Allocating %s increased unpaid items from %d to %d", amount, before, after)
		}
	}
}

func TestAllocatePayment_InvalidAmount(t *testing.T) {
	loan := newActiveLoan(t, "100000", "0.10", 3, date(2024, 1, 1))

	for _, amount := range []string{"0", "-10"} {
		_, err := loan.AllocatePayment(dec(amount), date(2024, 2, 1))
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount for %s, got %v", amount, err)
		}
	}
}

func TestAllocatePayment_NoScheduleIsNoop(t *testing.T) {
	loan := &Loan{ID: uuid.New(), Status: LoanStatusApproved, Amount: dec("1000")}

	result, err := loan.AllocatePayment(dec("500"), date(2024, 2, 1))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if loan.Status != LoanStatusApproved || result.Closed {
		t.Errorf("Expected loan to be untouched, got status %s", loan.Status)
	}
}

func TestAllocatePayment_IncludesLateFee(t *testing.T) {
	loan := newActiveLoan(t, "100000", "0.10", 3, date(2024, 1, 1))
	loan.Schedule[0].ApplyLateFee(dec("0.05"), date(2024, 2, 10))

	if _, err := loan.AllocatePayment(dec("10000"), date(2024, 2, 10)); err != nil {
		t.Fatalf("Failed to allocate payment: %v", err)
	}
	if loan.Schedule[0].IsPaid {
		t.Error("Expected interest alone not to cover an item carrying a late fee")
	}

	if _, err := loan.AllocatePayment(dec("10500"), date(2024, 2, 10)); err != nil {
		t.Fatalf("Failed to allocate payment: %v", err)
	}
	if !loan.Schedule[0].IsPaid {
		t.Error("Expected interest plus late fee to cover the item")
	}
}

func TestPaymentRequestValidate(t *testing.T) {
	req := &PaymentRequest{Amount: dec("0"), Type: PaymentTypeInterest}
	if err := req.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}

	req = &PaymentRequest{Amount: dec("100"), Type: "Bogus", Method: "Crypto", PaymentDate: "01/02/2024"}
	err := req.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(verr.Reasons) != 3 {
		t.Errorf("Expected 3 reasons, got %v", verr.Reasons)
	}
}

func TestCalculatePaymentTotals(t *testing.T) {
	payments := []*Payment{
		{Amount: dec("10000"), Type: PaymentTypeInterest, PaymentDate: date(2024, 2, 1)},
		{Amount: dec("500"), Type: PaymentTypeLateFee, PaymentDate: date(2024, 3, 3)},
		{Amount: dec("40000"), Type: PaymentTypePrincipal, PaymentDate: date(2024, 2, 20)},
		{Amount: dec("25"), Type: PaymentTypeOther, PaymentDate: date(2024, 1, 20)},
	}

	totals := CalculatePaymentTotals(payments)

	if !totals.Interest.Equal(dec("10000")) || !totals.Principal.Equal(dec("40000")) ||
		!totals.LateFees.Equal(dec("500")) || !totals.Other.Equal(dec("25")) {
		t.Errorf("Unexpected totals: %+v", totals)
	}
	if !totals.Total.Equal(dec("50525")) {
		t.Errorf("Expected total 50525, got %s", totals.Total)
	}
	if totals.PaymentCount != 4 {
		t.Errorf("Expected 4 payments, got %d", totals.PaymentCount)
	}
	if totals.LastPaymentDate == nil || !totals.LastPaymentDate.Equal(date(2024, 3, 3)) {
		t.Errorf("Expected last payment 2024-03-03, got %v", totals.LastPaymentDate)
	}
}

func TestValidatePayment(t *testing.T) {
	loan := newActiveLoan(t, "100000", "0.10", 3, date(2024, 1, 1))
	own := loan.Schedule[0].ID
	foreign := uuid.New()

	tests := []struct {
		name     string
		status   LoanStatus
		req      PaymentRequest
		wantFail bool
	}{
		{"interest on active", LoanStatusActive, PaymentRequest{Amount: dec("10000"), Type: PaymentTypeInterest}, false},
		{"own installment", LoanStatusActive, PaymentRequest{Amount: dec("10000"), Type: PaymentTypeInterest, ScheduleID: &own}, false},
		{"foreign installment", LoanStatusActive, PaymentRequest{Amount: dec("10000"), Type: PaymentTypeInterest, ScheduleID: &foreign}, true},
		{"principal on closed", LoanStatusClosed, PaymentRequest{Amount: dec("100000"), Type: PaymentTypePrincipal}, false},
		{"late fee on closed", LoanStatusClosed, PaymentRequest{Amount: dec("500"), Type: PaymentTypeLateFee}, false},
		{"interest on closed", LoanStatusClosed, PaymentRequest{Amount: dec("10000"), Type: PaymentTypeInterest}, true},
		{"principal on draft", LoanStatusDraft, PaymentRequest{Amount: dec("100000"), Type: PaymentTypePrincipal}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan.Status = tt.status
			err := loan.ValidatePayment(&tt.req)
			if tt.wantFail && !errors.Is(err, ErrValidationFailed) {
				t.Errorf("Expected validation error, got %v", err)
			}
			if !tt.wantFail && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
