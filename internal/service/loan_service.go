package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// LoanSvc is an implementation of the service.LoanService interface
type LoanSvc struct {
	repos    *repository.Repository
	logger   *logrus.Logger
	config   *configs.Config
	notifier Notifier
	clock    func() time.Time
}

// NewLoanService creates a new LoanSvc
func NewLoanService(deps Dependencies) *LoanSvc {
	return &LoanSvc{
		repos:    deps.Repos,
		logger:   deps.Logger,
		config:   deps.Config,
		notifier: deps.Notifier,
		clock:    deps.Clock,
	}
}

// Create files a Draft loan application and assigns its reference number
func (s *LoanSvc) Create(ctx context.Context, req *models.LoanRequest, userID uuid.UUID) (*models.Loan, error) {
	// Get the product the terms are checked against
	product, err := s.repos.Product.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan product: %w", err)
	}

	if err := req.Validate(product); err != nil {
		return nil, err
	}

	// Check that the borrower owns the collateral
	if _, err := s.repos.Borrower.GetByID(ctx, req.BorrowerID); err != nil {
		return nil, fmt.Errorf("failed to get borrower: %w", err)
	}

	collateral, err := s.repos.Property.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get collateral: %w", err)
	}
	if collateral.BorrowerID != req.BorrowerID {
		return nil, &models.ValidationError{Reasons: []string{"property does not belong to the borrower"}}
	}

	now := today(s.clock)
	var loan *models.Loan

	// Start a transaction so the loan number is allocated once
	err = s.repos.WithinTx(ctx, func(ctx context.Context) error {
		seq, err := s.repos.Loan.NextSequence(ctx, models.LoanNumberPrefix(now))
		if err != nil {
			return fmt.Errorf("failed to allocate loan number: %w", err)
		}

		loan = req.ToLoan(product, collateral, models.FormatLoanNumber(now, seq), userID, now)
		if err := s.repos.Loan.Create(ctx, loan); err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"loan_number": loan.LoanNumber,
		"amount":      loan.Amount.String(),
		"term":        loan.TermMonths,
		"ltv":         loan.LTV.StringFixed(4),
	}).Info("Loan application created")

	return loan, nil
}

// GetByID gets a loan with its full aggregate
func (s *LoanSvc) GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	return loadLoan(ctx, s.repos, id, loadAll)
}

// List lists loans matching the filter
func (s *LoanSvc) List(ctx context.Context, filter models.LoanFilter) ([]*models.Loan, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, &models.ValidationError{Reasons: []string{fmt.Sprintf("unknown loan status %q", status)}}
		}
	}

	loans, err := s.repos.Loan.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

// Submit sends a Draft application to review
func (s *LoanSvc) Submit(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Loan, error) {
	return s.transition(ctx, id, models.LoanStatusUnderReview, userID)
}

// Return sends an application under review back to Draft
func (s *LoanSvc) Return(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Loan, error) {
	return s.transition(ctx, id, models.LoanStatusDraft, userID)
}

// Approve approves a loan under review once every approval gate passes
func (s *LoanSvc) Approve(ctx context.Context, id uuid.UUID, userID uuid.UUID, notes string) (*models.Loan, error) {
	var loan *models.Loan

	err := s.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = loadLoan(ctx, s.repos, id, loadOptions{forUpdate: true, parties: true})
		if err != nil {
			return err
		}

		// Run the approval gates
		if err := loan.Approve(userID, notes, s.clock()); err != nil {
			return err
		}

		if err := s.repos.Loan.Update(ctx, loan); err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(loan, models.LoanStatusUnderReview, userID)

	// Send the email
	approved := *loan
	notifyAsync(s.logger, "loan approval", func(ctx context.Context) error {
		return s.notifier.LoanApproved(ctx, &approved)
	})

	return loan, nil
}

// Activate disburses an approved loan today and stores its payment schedule
func (s *LoanSvc) Activate(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Loan, error) {
	var loan *models.Loan

	err := s.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = loadLoan(ctx, s.repos, id, loadOptions{forUpdate: true, parties: true, documents: true})
		if err != nil {
			return err
		}

		// Disburse today and build the schedule
		if err := loan.Activate(today(s.clock)); err != nil {
			return err
		}

		// Store the loan and its installments
		if err := s.repos.Loan.Update(ctx, loan); err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		if err := s.repos.Schedule.ReplaceForLoan(ctx, loan.ID, loan.Schedule); err != nil {
			return fmt.Errorf("failed to store payment schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(loan, models.LoanStatusApproved, userID)

	// Send the email
	activated := *loan
	notifyAsync(s.logger, "loan activation", func(ctx context.Context) error {
		return s.notifier.LoanActivated(ctx, &activated)
	})

	return loan, nil
}

// Transition moves a loan to target. Approval and activation go through their gates.
func (s *LoanSvc) Transition(ctx context.Context, id uuid.UUID, target models.LoanStatus, userID uuid.UUID) (*models.Loan, error) {
	if !target.Valid() {
		return nil, &models.ValidationError{Reasons: []string{fmt.Sprintf("unknown loan status %q", target)}}
	}

	switch target {
	case models.LoanStatusApproved:
		return s.Approve(ctx, id, userID, "")
	case models.LoanStatusActive:
		return s.Activate(ctx, id, userID)
	}

	return s.transition(ctx, id, target, userID)
}

func (s *LoanSvc) transition(ctx context.Context, id uuid.UUID, target models.LoanStatus, userID uuid.UUID) (*models.Loan, error) {
	var (
		loan *models.Loan
		from models.LoanStatus
	)

	err := s.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.repos.Loan.GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get loan: %w", err)
		}

		// Check the transition table
		from = loan.Status
		if err := loan.TransitionTo(target); err != nil {
			return err
		}

		if err := s.repos.Loan.Update(ctx, loan); err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(loan, from, userID)

	if target == models.LoanStatusDefaulted {
		defaulted := *loan
		notifyAsync(s.logger, "loan default", func(ctx context.Context) error {
			if err := loadRelations(ctx, s.repos, &defaulted, loadOptions{parties: true}); err != nil {
				return err
			}
			return s.notifier.LoanDefaulted(ctx, &defaulted)
		})
	}

	return loan, nil
}

func (s *LoanSvc) logTransition(loan *models.Loan, from models.LoanStatus, userID uuid.UUID) {
	s.logger.WithFields(logrus.Fields{
		"loan_number": loan.LoanNumber,
		"from":        from,
		"to":          loan.Status,
		"user_id":     userID,
	}).Info("Loan status changed")
}

// GetSchedule returns the stored schedule with summary statistics as of today
func (s *LoanSvc) GetSchedule(ctx context.Context, id uuid.UUID) ([]*models.PaymentScheduleItem, *models.PaymentScheduleSummary, error) {
	// Check if loan exists
	if _, err := s.repos.Loan.GetByID(ctx, id); err != nil {
		return nil, nil, fmt.Errorf("failed to get loan: %w", err)
	}

	schedule, err := s.repos.Schedule.GetByLoanID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get payment schedule: %w", err)
	}

	return schedule, models.CalculatePaymentScheduleSummary(schedule, today(s.clock)), nil
}

// RegenerateSchedule rebuilds the schedule of an Active loan from its terms
func (s *LoanSvc) RegenerateSchedule(ctx context.Context, id uuid.UUID, userID uuid.UUID) ([]*models.PaymentScheduleItem, error) {
	var loan *models.Loan

	err := s.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = loadLoan(ctx, s.repos, id, loadOptions{forUpdate: true, schedule: true})
		if err != nil {
			return err
		}

		if loan.Status != models.LoanStatusActive {
			return &models.ValidationError{Reasons: []string{
				fmt.Sprintf("schedule can only be regenerated for Active loans (current status: %s)", loan.Status),
			}}
		}

		// Paid installments and assessed fees carry over
		if _, err := loan.RegenerateSchedule(); err != nil {
			return fmt.Errorf("failed to generate payment schedule: %w", err)
		}
		if err := s.repos.Schedule.ReplaceForLoan(ctx, loan.ID, loan.Schedule); err != nil {
			return fmt.Errorf("failed to store payment schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"loan_number":  loan.LoanNumber,
		"installments": len(loan.Schedule),
		"user_id":      userID,
	}).Info("Payment schedule regenerated")

	return loan.Schedule, nil
}

// Summary returns the balances and delinquency of a loan as of today
func (s *LoanSvc) Summary(ctx context.Context, id uuid.UUID) (*models.LoanSummary, error) {
	loan, err := loadLoan(ctx, s.repos, id, loadOptions{schedule: true, payments: true})
	if err != nil {
		return nil, err
	}
	return loan.Summary(today(s.clock), s.config.Collections.Policy()), nil
}

// Checklist reports the execution state of the required legal documents
func (s *LoanSvc) Checklist(ctx context.Context, id uuid.UUID) ([]models.ChecklistItem, error) {
	loan, err := loadLoan(ctx, s.repos, id, loadOptions{documents: true})
	if err != nil {
		return nil, err
	}
	return loan.DocumentChecklist(), nil
}

// ExportScheduleXML renders the payment schedule for the legal document package
func (s *LoanSvc) ExportScheduleXML(ctx context.Context, id uuid.UUID) ([]byte, error) {
	loan, err := loadLoan(ctx, s.repos, id, loadOptions{parties: true, schedule: true})
	if err != nil {
		return nil, err
	}

	doc := renderScheduleXML(loan, today(s.clock))

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render schedule: %w", err)
	}
	return out, nil
}

func renderScheduleXML(loan *models.Loan, asOf time.Time) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("PaymentSchedule")
	root.CreateAttr("loanNumber", loan.LoanNumber)
	root.CreateAttr("status", string(loan.Status))

	terms := root.CreateElement("Terms")
	terms.CreateElement("Amount").SetText(loan.Amount.StringFixed(2))
	terms.CreateElement("MonthlyRate").SetText(loan.InterestRate.String())
	terms.CreateElement("TermMonths").SetText(strconv.Itoa(loan.TermMonths))
	if loan.DisbursementDate != nil {
		terms.CreateElement("DisbursementDate").SetText(loan.DisbursementDate.Format("2006-01-02"))
	}
	if loan.MaturityDate != nil {
		terms.CreateElement("MaturityDate").SetText(loan.MaturityDate.Format("2006-01-02"))
	}
	if loan.Borrower != nil {
		terms.CreateElement("Borrower").SetText(loan.Borrower.FullName)
	}
	if loan.Collateral != nil {
		terms.CreateElement("Collateral").SetText(loan.Collateral.RegistryNumber())
	}

	installments := root.CreateElement("Installments")
	for _, item := range loan.Schedule {
		el := installments.CreateElement("Installment")
		el.CreateAttr("number", strconv.Itoa(item.PaymentNumber))
		el.CreateAttr("dueDate", item.DueDate.Format("2006-01-02"))
		el.CreateElement("Principal").SetText(item.PrincipalDue.StringFixed(2))
		el.CreateElement("Interest").SetText(item.InterestDue.StringFixed(2))
		el.CreateElement("LateFee").SetText(item.LateFee.StringFixed(2))
		el.CreateElement("Total").SetText(item.TotalDue().StringFixed(2))
		el.CreateElement("Paid").SetText(strconv.FormatBool(item.IsPaid))
	}

	summary := models.CalculatePaymentScheduleSummary(loan.Schedule, asOf)
	totals := root.CreateElement("Totals")
	totals.CreateElement("Principal").SetText(summary.TotalPrincipal.StringFixed(2))
	totals.CreateElement("Interest").SetText(summary.TotalInterest.StringFixed(2))
	totals.CreateElement("LateFees").SetText(summary.TotalLateFees.StringFixed(2))
	totals.CreateElement("Remaining").SetText(summary.RemainingAmount.StringFixed(2))

	doc.Indent(2)
	return doc
}
