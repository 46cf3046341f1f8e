package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lending-service/internal/models"
)

func interestPayment(amount int64) *models.PaymentRequest {
	return &models.PaymentRequest{
		Amount: decimal.NewFromInt(amount),
		Type:   models.PaymentTypeInterest,
		Method: models.PaymentMethodTransfer,
	}
}

func TestRecordPayment_FirstInstallment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	env.clock.Set(2024, time.February, 1)

	result, err := env.svc.Payment.RecordPayment(ctx, loan.ID, interestPayment(10000), staffID)
	if err != nil {
		t.Fatalf("Failed to record payment: %v", err)
	}
	if result.Status != models.LoanStatusActive {
		t.Errorf("Expected loan to stay Active, got %s", result.Status)
	}
	if len(result.Allocation.Paid) != 1 || result.Allocation.Paid[0].PaymentNumber != 1 {
		t.Fatalf("Expected installment 1 to be paid, got %+v", result.Allocation.Paid)
	}
	if result.Payment.ScheduleID == nil || *result.Payment.ScheduleID != result.Allocation.Paid[0].ID {
		t.Errorf("Expected payment to reference the paid installment")
	}

	schedule, _, _ := env.svc.Loan.GetSchedule(ctx, loan.ID)
	if !schedule[0].IsPaid || schedule[1].IsPaid || schedule[2].IsPaid {
		t.Errorf("Expected only installment 1 paid, got %v %v %v", schedule[0].IsPaid, schedule[1].IsPaid, schedule[2].IsPaid)
	}

	summary, err := env.svc.Loan.Summary(ctx, loan.ID)
	if err != nil {
		t.Fatalf("Failed to get summary: %v", err)
	}
	if !summary.OutstandingInterest.IsZero() || summary.DaysPastDue != 0 || summary.Stage != models.StageCurrent {
		t.Errorf("Unexpected summary after first payment: %+v", summary)
	}
	if !summary.OutstandingPrincipal.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("Expected outstanding principal 100000, got %s", summary.OutstandingPrincipal)
	}
}

func TestRecordPayment_PartialRemainder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	result, err := env.svc.Payment.RecordPayment(ctx, loan.ID, interestPayment(15000), staffID)
	if err != nil {
		t.Fatalf("Failed to record payment: %v", err)
	}
	if len(result.Allocation.Paid) != 1 {
		t.Errorf("Expected one installment paid, got %d", len(result.Allocation.Paid))
	}
	if !result.Allocation.Unapplied.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected 5000 unapplied, got %s", result.Allocation.Unapplied)
	}

	payments, totals, err := env.svc.Payment.List(ctx, loan.ID)
	if err != nil {
		t.Fatalf("Failed to list payments: %v", err)
	}
	if len(payments) != 1 || !totals.Interest.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("Expected the full amount recorded, got %d payments totalling %s", len(payments), totals.Interest)
	}
}

func TestRecordPayment_PayoffClosesLoan(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	result, err := env.svc.Payment.RecordPayment(ctx, loan.ID, interestPayment(30000), staffID)
	if err != nil {
		t.Fatalf("Failed to record payment: %v", err)
	}
	if !result.Allocation.Closed || result.Status != models.LoanStatusClosed {
		t.Fatalf("Expected loan to close, got %+v", result)
	}

	stored, _ := env.svc.Loan.GetByID(ctx, loan.ID)
	if stored.Status != models.LoanStatusClosed {
		t.Errorf("Expected stored status Closed, got %s", stored.Status)
	}

	_, err = env.svc.Payment.RecordPayment(ctx, loan.ID, interestPayment(100), staffID)
	if !errors.Is(err, models.ErrValidationFailed) {
		t.Errorf("Expected payment on a Closed loan to be refused, got %v", err)
	}
}

func TestRecordPayment_PrincipalAfterInterestPayoff(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	env.clock.Set(2024, time.April, 1)

	result, err := env.svc.Payment.RecordPayment(ctx, loan.ID, interestPayment(30000), staffID)
	if err != nil {
		t.Fatalf("Failed to record interest: %v", err)
	}
	if result.Status != models.LoanStatusClosed {
		t.Fatalf("Expected interest payoff to close the loan, got %s", result.Status)
	}

	// The balloon principal still has to be received on the Closed loan
	result, err = env.svc.Payment.RecordPayment(ctx, loan.ID, &models.PaymentRequest{
		Amount: decimal.NewFromInt(100000),
		Type:   models.PaymentTypePrincipal,
		Method: models.PaymentMethodTransfer,
	}, staffID)
	if err != nil {
		t.Fatalf("Failed to record principal on a Closed loan: %v", err)
	}
	if result.Allocation != nil || result.Status != models.LoanStatusClosed {
		t.Errorf("Expected unallocated principal on a Closed loan, got %+v", result)
	}

	summary, _ := env.svc.Loan.Summary(ctx, loan.ID)
	if !summary.OutstandingPrincipal.IsZero() || !summary.OutstandingInterest.IsZero() {
		t.Errorf("Expected nothing outstanding, got principal %s interest %s", summary.OutstandingPrincipal, summary.OutstandingInterest)
	}
}

func TestRecordPayment_ForeignInstallment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	req := interestPayment(10000)
	foreign := uuid.New()
	req.ScheduleID = &foreign

	if _, err := env.svc.Payment.RecordPayment(ctx, loan.ID, req, staffID); !errors.Is(err, models.ErrValidationFailed) {
		t.Fatalf("Expected installment of another loan to be refused, got %v", err)
	}
	if payments, _, _ := env.svc.Payment.List(ctx, loan.ID); len(payments) != 0 {
		t.Errorf("Expected no payment stored, got %d", len(payments))
	}

	schedule, _, _ := env.svc.Loan.GetSchedule(ctx, loan.ID)
	req.ScheduleID = &schedule[0].ID
	result, err := env.svc.Payment.RecordPayment(ctx, loan.ID, req, staffID)
	if err != nil {
		t.Fatalf("Failed to record payment against own installment: %v", err)
	}
	if *result.Payment.ScheduleID != schedule[0].ID {
		t.Errorf("Expected payment to keep its installment reference")
	}
}

func TestRecordPayment_PrincipalNotAllocated(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	result, err := env.svc.Payment.RecordPayment(ctx, loan.ID, &models.PaymentRequest{
		Amount:      decimal.NewFromInt(40000),
		Type:        models.PaymentTypePrincipal,
		PaymentDate: "2024-01-20",
	}, staffID)
	if err != nil {
		t.Fatalf("Failed to record payment: %v", err)
	}
	if result.Allocation != nil {
		t.Errorf("Expected principal payment not to touch the schedule")
	}
	if result.Payment.PaymentDate.Format("2006-01-02") != "2024-01-20" {
		t.Errorf("Expected explicit payment date, got %s", result.Payment.PaymentDate)
	}

	summary, _ := env.svc.Loan.Summary(ctx, loan.ID)
	if !summary.OutstandingPrincipal.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("Expected outstanding principal 60000, got %s", summary.OutstandingPrincipal)
	}
}

func TestRecordPayment_Invalid(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.draftLoan(t, true)

	if _, err := env.svc.Payment.RecordPayment(ctx, loan.ID, interestPayment(0), staffID); !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
	if _, err := env.svc.Payment.RecordPayment(ctx, loan.ID, interestPayment(100), staffID); !errors.Is(err, models.ErrValidationFailed) {
		t.Errorf("Expected payment on a Draft loan to be refused, got %v", err)
	}
}
