package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lending-service/internal/models"
)

func TestDashboard(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	// a second application on the same collateral stays in Draft
	if _, err := env.svc.Loan.Create(ctx, &models.LoanRequest{
		BorrowerID: loan.BorrowerID,
		PropertyID: loan.PropertyID,
		ProductID:  loan.ProductID,
		Amount:     decimal.NewFromInt(50000),
		TermMonths: 4,
	}, staffID); err != nil {
		t.Fatalf("Failed to create second loan: %v", err)
	}

	env.clock.Set(2024, time.February, 1)
	if _, err := env.svc.Payment.RecordPayment(ctx, loan.ID, interestPayment(10000), staffID); err != nil {
		t.Fatalf("Failed to record payment: %v", err)
	}

	env.clock.Set(2024, time.February, 20)
	metrics, err := env.svc.Analytics.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Failed to build dashboard: %v", err)
	}

	if metrics.ActiveLoans != 1 || !metrics.TotalPortfolio.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("Expected one active loan worth 100000, got %d worth %s", metrics.ActiveLoans, metrics.TotalPortfolio)
	}
	if metrics.LoansByStatus[models.LoanStatusDraft] != 1 || metrics.LoansByStatus[models.LoanStatusActive] != 1 {
		t.Errorf("Unexpected status counts: %v", metrics.LoansByStatus)
	}
	if !metrics.DefaultRate.IsZero() {
		t.Errorf("Expected default rate 0, got %s", metrics.DefaultRate)
	}
	if metrics.AverageLTV.StringFixed(4) != "0.3333" {
		t.Errorf("Expected average LTV 0.3333, got %s", metrics.AverageLTV.StringFixed(4))
	}
	if !metrics.MonthlyInterestIncome.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Expected interest income 10000, got %s", metrics.MonthlyInterestIncome)
	}
	if metrics.OverduePayments != 0 {
		t.Errorf("Expected nothing overdue, got %d", metrics.OverduePayments)
	}
	if len(metrics.LoansByDepartment) != 1 || metrics.LoansByDepartment[0].Department != "Guatemala" {
		t.Errorf("Expected Guatemala exposure only, got %+v", metrics.LoansByDepartment)
	}
	if len(metrics.RecentLoans) != 2 {
		t.Errorf("Expected 2 recent loans, got %d", len(metrics.RecentLoans))
	}

	// second installment falls due 2024-03-01
	env.clock.Set(2024, time.March, 10)
	metrics, err = env.svc.Analytics.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Failed to build dashboard: %v", err)
	}
	if metrics.OverduePayments != 1 || !metrics.OverdueAmount.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Expected one overdue installment of 10000, got %d of %s", metrics.OverduePayments, metrics.OverdueAmount)
	}
	if !metrics.MonthlyInterestIncome.IsZero() {
		t.Errorf("Expected no March interest income, got %s", metrics.MonthlyInterestIncome)
	}
}

func TestDashboard_Empty(t *testing.T) {
	env := newTestEnv()

	metrics, err := env.svc.Analytics.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Failed to build dashboard: %v", err)
	}
	if metrics.ActiveLoans != 0 || len(metrics.RecentLoans) != 0 || !metrics.TotalPortfolio.IsZero() {
		t.Errorf("Expected empty dashboard, got %+v", metrics)
	}
}
