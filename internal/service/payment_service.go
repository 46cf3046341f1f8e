package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// PaymentSvc is an implementation of the service.PaymentService interface
type PaymentSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	clock  func() time.Time
}

// NewPaymentService creates a new PaymentSvc
func NewPaymentService(deps Dependencies) *PaymentSvc {
	return &PaymentSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		clock:  deps.Clock,
	}
}

// RecordPayment stores a payment and, for interest payments, allocates it to the schedule
func (s *PaymentSvc) RecordPayment(ctx context.Context, loanID uuid.UUID, req *models.PaymentRequest, userID uuid.UUID) (*models.PaymentResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		loan   *models.Loan
		result = &models.PaymentResult{}
	)

	err := s.repos.WithinTx(ctx, func(ctx context.Context) error {
		// Lock the loan and load its schedule
		var err error
		loan, err = loadLoan(ctx, s.repos, loanID, loadOptions{forUpdate: true, schedule: true})
		if err != nil {
			return err
		}

		// Check status and installment reference
		if err := loan.ValidatePayment(req); err != nil {
			return err
		}

		payment := req.ToPayment(loan.ID, userID, today(s.clock))
		result.Payment = payment

		// Only interest is allocated to installments
		if payment.Type == models.PaymentTypeInterest {
			allocation, err := loan.AllocatePayment(payment.Amount, payment.PaymentDate)
			if err != nil {
				return err
			}
			result.Allocation = allocation

			if err := saveScheduleItems(ctx, s.repos, allocation.Paid); err != nil {
				return err
			}
			if payment.ScheduleID == nil && len(allocation.Paid) > 0 {
				id := allocation.Paid[0].ID
				payment.ScheduleID = &id
			}
			if allocation.Closed {
				if err := s.repos.Loan.Update(ctx, loan); err != nil {
					return fmt.Errorf("failed to close loan: %w", err)
				}
			}
		}

		// Create payment record
		if err := s.repos.Payment.Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Status = loan.Status

	fields := logrus.Fields{
		"loan_number":  loan.LoanNumber,
		"amount":       req.Amount.String(),
		"payment_type": req.Type,
	}
	if a := result.Allocation; a != nil {
		fields["installments_paid"] = len(a.Paid)
		fields["applied"] = a.Applied.String()
		if a.Unapplied.IsPositive() {
			s.logger.WithFields(fields).Warnf("Payment remainder %s did not cover the next installment", a.Unapplied)
		}
		if a.Closed {
			s.logger.WithFields(fields).Info("Loan closed by payment")
		}
	}
	s.logger.WithFields(fields).Info("Payment recorded")

	return result, nil
}

// List returns the payments of a loan with totals per type
func (s *PaymentSvc) List(ctx context.Context, loanID uuid.UUID) ([]*models.Payment, *models.PaymentTotals, error) {
	if _, err := s.repos.Loan.GetByID(ctx, loanID); err != nil {
		return nil, nil, fmt.Errorf("failed to get loan: %w", err)
	}

	payments, err := s.repos.Payment.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get payments: %w", err)
	}

	totals := models.CalculatePaymentTotals(payments)
	return payments, &totals, nil
}
