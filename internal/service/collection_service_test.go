package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lending-service/internal/models"
)

func TestRunDailySweep_Default(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	// installment 1 fell due 2024-02-01, 20 days late
	env.clock.Set(2024, time.February, 21)

	report, err := env.svc.Collection.RunDailySweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if report.LoansChecked != 1 || report.Errors != 0 {
		t.Errorf("Unexpected report: %+v", report)
	}
	if !report.FeesAssessed.Equal(decimal.NewFromInt(500)) || report.ItemsCharged != 1 {
		t.Errorf("Expected one 500 fee, got %s on %d items", report.FeesAssessed, report.ItemsCharged)
	}
	if report.Defaulted != 1 || report.OverdueNotice != 1 {
		t.Errorf("Expected default and overdue notice, got %+v", report)
	}

	summary, _ := env.svc.Loan.Summary(ctx, loan.ID)
	if summary.Status != models.LoanStatusDefaulted || summary.Stage != models.StageDelinquent || summary.DaysPastDue != 20 {
		t.Errorf("Unexpected summary: status %s stage %s dpd %d", summary.Status, summary.Stage, summary.DaysPastDue)
	}

	// Running again the same day assesses nothing new
	report, err = env.svc.Collection.RunDailySweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if !report.FeesAssessed.IsZero() || report.Defaulted != 0 || report.LegalReady != 0 {
		t.Errorf("Expected idempotent second sweep, got %+v", report)
	}

	// 30 days past due moves the Defaulted loan to LegalReady
	env.clock.Set(2024, time.March, 2)
	report, err = env.svc.Collection.RunDailySweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if report.LegalReady != 1 {
		t.Errorf("Expected LegalReady transition, got %+v", report)
	}

	stored, _ := env.svc.Loan.GetByID(ctx, loan.ID)
	if stored.Status != models.LoanStatusLegalReady {
		t.Errorf("Expected LegalReady, got %s", stored.Status)
	}
	if env.notifier.count(func(n *recordingNotifier) int { return n.defaulted }) != 1 {
		t.Errorf("Expected one default notice")
	}
}

func TestRunDailySweep_Reminders(t *testing.T) {
	env := newTestEnv()
	env.activeLoan(t)

	// three days before the first due date
	env.clock.Set(2024, time.January, 29)

	report, err := env.svc.Collection.RunDailySweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if report.Reminders != 1 || report.OverdueNotice != 0 || !report.FeesAssessed.IsZero() {
		t.Errorf("Expected a single reminder, got %+v", report)
	}
	if env.notifier.count(func(n *recordingNotifier) int { return n.reminders }) != 1 {
		t.Errorf("Expected reminder to be sent")
	}
}

func TestGrantExtension(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	env.clock.Set(2024, time.February, 10)
	if _, err := env.svc.Collection.RunDailySweep(ctx); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	action, err := env.svc.Collection.GrantExtension(ctx, loan.ID, &models.ExtensionRequest{Days: 10, Notes: "harvest delayed"}, staffID)
	if err != nil {
		t.Fatalf("Failed to grant extension: %v", err)
	}
	if action.Stage != models.StageReminder || action.NewDueDate.Format("2006-01-02") != "2024-02-11" {
		t.Errorf("Unexpected extension action: stage %s due %s", action.Stage, action.NewDueDate)
	}

	schedule, _, _ := env.svc.Loan.GetSchedule(ctx, loan.ID)
	if !schedule[0].LateFee.IsZero() {
		t.Errorf("Expected late fee waived, got %s", schedule[0].LateFee)
	}

	stored, _ := env.svc.Loan.GetByID(ctx, loan.ID)
	if stored.Status != models.LoanStatusActive {
		t.Errorf("Expected status unchanged, got %s", stored.Status)
	}

	history, err := env.svc.Collection.History(ctx, loan.ID)
	if err != nil || len(history) != 1 || history[0].ActionType != models.ActionExtensionGranted {
		t.Errorf("Expected extension in history, got %v (%v)", history, err)
	}

	if _, err := env.svc.Collection.GrantExtension(ctx, loan.ID, &models.ExtensionRequest{Days: 0}, staffID); !errors.Is(err, models.ErrValidationFailed) {
		t.Errorf("Expected validation error for zero days, got %v", err)
	}
}

func TestEscalateToLegal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	_, err := env.svc.Collection.EscalateToLegal(ctx, loan.ID, &models.EscalationRequest{}, staffID)
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("Expected invalid transition for an Active loan, got %v", err)
	}

	if _, err := env.svc.Loan.Transition(ctx, loan.ID, models.LoanStatusDefaulted, staffID); err != nil {
		t.Fatalf("Failed to default loan: %v", err)
	}

	action, err := env.svc.Collection.EscalateToLegal(ctx, loan.ID, &models.EscalationRequest{Notes: "no contact"}, staffID)
	if err != nil {
		t.Fatalf("Failed to escalate: %v", err)
	}
	if !action.EscalatedToLegal || action.ActionType != models.ActionLegalNotice {
		t.Errorf("Unexpected escalation action: %+v", action)
	}

	stored, _ := env.svc.Loan.GetByID(ctx, loan.ID)
	if stored.Status != models.LoanStatusLegalReady {
		t.Errorf("Expected LegalReady, got %s", stored.Status)
	}
}

func TestLogActionAndDelinquent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loan := env.activeLoan(t)

	queue, err := env.svc.Collection.Delinquent(ctx)
	if err != nil || len(queue) != 0 {
		t.Fatalf("Expected empty queue before any due date, got %d (%v)", len(queue), err)
	}

	env.clock.Set(2024, time.February, 4)

	queue, err = env.svc.Collection.Delinquent(ctx)
	if err != nil || len(queue) != 1 {
		t.Fatalf("Expected one delinquent loan, got %d (%v)", len(queue), err)
	}
	if queue[0].DaysPastDue != 3 || queue[0].Stage != models.StageGrace || queue[0].BorrowerName != "Ana Lopez" {
		t.Errorf("Unexpected queue entry: %+v", queue[0])
	}

	amount := decimal.NewFromInt(10000)
	action, err := env.svc.Collection.LogAction(ctx, loan.ID, &models.CollectionActionRequest{
		ActionType:    models.ActionPaymentPromise,
		PromiseAmount: &amount,
		PromiseDate:   "2024-02-08",
	}, staffID)
	if err != nil {
		t.Fatalf("Failed to log action: %v", err)
	}
	if action.Stage != models.StageGrace || action.PromiseDate == nil {
		t.Errorf("Unexpected action: %+v", action)
	}

	_, err = env.svc.Collection.LogAction(ctx, loan.ID, &models.CollectionActionRequest{ActionType: models.ActionLegalNotice}, staffID)
	if !errors.Is(err, models.ErrValidationFailed) {
		t.Errorf("Expected legal notice to be refused, got %v", err)
	}
}
