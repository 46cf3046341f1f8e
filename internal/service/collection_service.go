package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// sweptStatuses are the loans the daily sweep assesses fees on and checks for default
var sweptStatuses = []models.LoanStatus{
	models.LoanStatusActive,
	models.LoanStatusMatured,
	models.LoanStatusDefaulted,
}

// delinquentStatuses are the loans that can appear in the collections queue
var delinquentStatuses = []models.LoanStatus{
	models.LoanStatusActive,
	models.LoanStatusMatured,
	models.LoanStatusDefaulted,
	models.LoanStatusLegalReady,
}

// CollectionSvc is an implementation of the service.CollectionService interface
type CollectionSvc struct {
	repos    *repository.Repository
	logger   *logrus.Logger
	config   *configs.Config
	notifier Notifier
	clock    func() time.Time
}

// NewCollectionService creates a new CollectionSvc
func NewCollectionService(deps Dependencies) *CollectionSvc {
	return &CollectionSvc{
		repos:    deps.Repos,
		logger:   deps.Logger,
		config:   deps.Config,
		notifier: deps.Notifier,
		clock:    deps.Clock,
	}
}

func (s *CollectionSvc) policy() models.CollectionPolicy {
	return s.config.Collections.Policy()
}

// History returns the collection actions logged on a loan
func (s *CollectionSvc) History(ctx context.Context, loanID uuid.UUID) ([]*models.CollectionAction, error) {
	// Check if loan exists
	if _, err := s.repos.Loan.GetByID(ctx, loanID); err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	actions, err := s.repos.Collection.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection actions: %w", err)
	}
	return actions, nil
}

// LogAction records a contact attempt or payment promise at the loan's current stage
func (s *CollectionSvc) LogAction(ctx context.Context, loanID uuid.UUID, req *models.CollectionActionRequest, userID uuid.UUID) (*models.CollectionAction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	loan, err := loadLoan(ctx, s.repos, loanID, loadOptions{schedule: true})
	if err != nil {
		return nil, err
	}

	// Stage is derived from the current days past due
	action := loan.NewCollectionAction(req, userID, today(s.clock), s.policy())
	if err := s.repos.Collection.Create(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to create collection action: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"loan_number": loan.LoanNumber,
		"action":      action.ActionType,
		"stage":       action.Stage,
	}).Info("Collection action logged")

	return action, nil
}

// GrantExtension pushes the oldest unpaid installment back and waives its late fee
func (s *CollectionSvc) GrantExtension(ctx context.Context, loanID uuid.UUID, req *models.ExtensionRequest, userID uuid.UUID) (*models.CollectionAction, error) {
	var (
		loan   *models.Loan
		action *models.CollectionAction
	)

	err := s.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = loadLoan(ctx, s.repos, loanID, loadOptions{forUpdate: true, schedule: true})
		if err != nil {
			return err
		}

		var item *models.PaymentScheduleItem
		action, item, err = loan.GrantExtension(req.Days, userID, req.Notes, today(s.clock), s.policy())
		if err != nil {
			return err
		}

		// Save the moved installment and the audit entry together
		if err := s.repos.Schedule.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update installment: %w", err)
		}
		if err := s.repos.Collection.Create(ctx, action); err != nil {
			return fmt.Errorf("failed to create collection action: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"loan_number":  loan.LoanNumber,
		"days":         req.Days,
		"new_due_date": action.NewDueDate.Format("2006-01-02"),
	}).Info("Payment extension granted")

	return action, nil
}

// EscalateToLegal hands a Defaulted loan to legal
func (s *CollectionSvc) EscalateToLegal(ctx context.Context, loanID uuid.UUID, req *models.EscalationRequest, userID uuid.UUID) (*models.CollectionAction, error) {
	var (
		loan   *models.Loan
		action *models.CollectionAction
	)

	err := s.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.repos.Loan.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return fmt.Errorf("failed to get loan: %w", err)
		}

		action, err = loan.EscalateToLegal(userID, req.Notes, s.clock())
		if err != nil {
			return err
		}

		if err := s.repos.Loan.Update(ctx, loan); err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		if err := s.repos.Collection.Create(ctx, action); err != nil {
			return fmt.Errorf("failed to create collection action: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"loan_number": loan.LoanNumber,
		"from":        models.LoanStatusDefaulted,
		"to":          loan.Status,
		"user_id":     userID,
	}).Info("Loan escalated to legal")

	return action, nil
}

// Delinquent lists loans with overdue installments, most days past due first
func (s *CollectionSvc) Delinquent(ctx context.Context) ([]*models.DelinquentLoan, error) {
	loans, err := s.repos.Loan.GetByStatuses(ctx, delinquentStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}

	asOf := today(s.clock)
	policy := s.policy()

	queue := make([]*models.DelinquentLoan, 0)
	for _, loan := range loans {
		if err := loadRelations(ctx, s.repos, loan, loadOptions{schedule: true}); err != nil {
			return nil, err
		}

		dpd := loan.DaysPastDue(asOf)
		if dpd <= 0 {
			continue
		}

		// Collectors need the borrower's phone
		borrower, err := s.repos.Borrower.GetByID(ctx, loan.BorrowerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get borrower: %w", err)
		}

		summary := models.CalculatePaymentScheduleSummary(loan.Schedule, asOf)
		queue = append(queue, &models.DelinquentLoan{
			LoanID:        loan.ID,
			LoanNumber:    loan.LoanNumber,
			BorrowerName:  borrower.FullName,
			BorrowerPhone: borrower.Phone,
			Status:        loan.Status,
			DaysPastDue:   dpd,
			Stage:         policy.Stage(dpd),
			OverdueAmount: summary.OverdueAmount,
		})
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].DaysPastDue > queue[j].DaysPastDue
	})

	return queue, nil
}

// RunDailySweep assesses late fees, moves overdue loans towards default and sends
// reminders and overdue notices. Each loan is processed in its own transaction and
// a failing loan does not stop the sweep.
func (s *CollectionSvc) RunDailySweep(ctx context.Context) (*models.SweepReport, error) {
	asOf := today(s.clock)
	report := &models.SweepReport{AsOf: asOf, FeesAssessed: decimal.Zero}

	loans, err := s.repos.Loan.GetByStatuses(ctx, sweptStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans for sweep: %w", err)
	}

	s.logger.Infof("Running collections sweep for %s over %d loans", asOf.Format("2006-01-02"), len(loans))

	// Process each loan
	for _, candidate := range loans {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.LoansChecked++
		loan, err := s.sweepLoan(ctx, candidate.ID, asOf, report)
		if err != nil {
			report.Errors++
			s.logger.WithFields(logrus.Fields{
				"loan_number": candidate.LoanNumber,
			}).Warnf("Collections sweep failed for loan: %v", err)
			continue
		}

		if dpd := loan.DaysPastDue(asOf); dpd > 0 {
			if err := s.notifier.OverdueNotice(ctx, loan, dpd); err != nil {
				s.logger.Warnf("Failed to send overdue notice for %s: %v", loan.LoanNumber, err)
			} else {
				report.OverdueNotice++
			}
		}
	}

	// Send upcoming payment reminders
	s.sendReminders(ctx, asOf, report)

	s.logger.WithFields(logrus.Fields{
		"loans_checked": report.LoansChecked,
		"fees_assessed": report.FeesAssessed.String(),
		"defaulted":     report.Defaulted,
		"legal_ready":   report.LegalReady,
		"errors":        report.Errors,
	}).Info("Collections sweep finished")

	return report, nil
}

// sweepLoan applies late fees and the default check to one loan and commits the result
func (s *CollectionSvc) sweepLoan(ctx context.Context, loanID uuid.UUID, asOf time.Time, report *models.SweepReport) (*models.Loan, error) {
	var (
		loan    *models.Loan
		fees    decimal.Decimal
		charged int
		from    models.LoanStatus
		changed bool
	)

	err := s.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = loadLoan(ctx, s.repos, loanID, loadOptions{forUpdate: true, parties: true, schedule: true})
		if err != nil {
			return err
		}

		// Assess late fees on overdue installments
		var items []*models.PaymentScheduleItem
		fees, items = loan.ApplyLateFees(asOf)
		charged = len(items)
		if err := saveScheduleItems(ctx, s.repos, items); err != nil {
			return err
		}

		// Move the loan towards default
		from = loan.Status
		changed, err = s.policy().CheckDefault(loan, asOf)
		if err != nil {
			return err
		}
		if changed {
			if err := s.repos.Loan.Update(ctx, loan); err != nil {
				return fmt.Errorf("failed to update loan: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.FeesAssessed = report.FeesAssessed.Add(fees)
	report.ItemsCharged += charged

	if charged > 0 {
		s.logger.WithFields(logrus.Fields{
			"loan_number": loan.LoanNumber,
			"late_fees":   fees.String(),
			"items":       charged,
		}).Info("Late fees assessed")
	}

	if !changed {
		return loan, nil
	}

	s.logger.WithFields(logrus.Fields{
		"loan_number":   loan.LoanNumber,
		"from":          from,
		"to":            loan.Status,
		"days_past_due": loan.DaysPastDue(asOf),
	}).Info("Loan status changed by collections sweep")

	switch loan.Status {
	case models.LoanStatusDefaulted:
		report.Defaulted++
		if err := s.notifier.LoanDefaulted(ctx, loan); err != nil {
			s.logger.Warnf("Failed to send default notice for %s: %v", loan.LoanNumber, err)
		}
	case models.LoanStatusLegalReady:
		report.LegalReady++
	}

	return loan, nil
}

// sendReminders notifies borrowers of installments falling due in the configured number of days
func (s *CollectionSvc) sendReminders(ctx context.Context, asOf time.Time, report *models.SweepReport) {
	due := asOf.AddDate(0, 0, s.config.Collections.ReminderDaysBefore)

	items, err := s.repos.Schedule.GetUnpaidDueBetween(ctx, due, due)
	if err != nil {
		report.Errors++
		s.logger.Warnf("Failed to get upcoming installments: %v", err)
		return
	}

	// Several installments can belong to one loan
	loans := make(map[uuid.UUID]*models.Loan)
	for _, item := range items {
		loan, ok := loans[item.LoanID]
		if !ok {
			loan, err = loadLoan(ctx, s.repos, item.LoanID, loadOptions{parties: true})
			if err != nil {
				report.Errors++
				s.logger.Warnf("Failed to load loan for reminder: %v", err)
				continue
			}
			loans[item.LoanID] = loan
		}

		if err := s.notifier.PaymentReminder(ctx, loan, item); err != nil {
			s.logger.Warnf("Failed to send payment reminder for %s: %v", loan.LoanNumber, err)
			continue
		}
		report.Reminders++
	}
}
