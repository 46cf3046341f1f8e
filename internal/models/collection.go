package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectionStage classifies how delinquent a loan is
type CollectionStage string

const (
	StageCurrent    CollectionStage = "Current"
	StageGrace      CollectionStage = "Grace"
	StageReminder   CollectionStage = "Reminder"
	StageDelinquent CollectionStage = "Delinquent"
	StageLegalReady CollectionStage = "LegalReady"
)

// Severity orders stages from Current (0) to LegalReady (4)
func (s CollectionStage) Severity() int {
	switch s {
	case StageGrace:
		return 1
	case StageReminder:
		return 2
	case StageDelinquent:
		return 3
	case StageLegalReady:
		return 4
	default:
		return 0
	}
}

// ActionType defines the kind of collection interaction
type ActionType string

const (
	ActionPhoneCall        ActionType = "PhoneCall"
	ActionSMS              ActionType = "SMS"
	ActionEmail            ActionType = "Email"
	ActionVisit            ActionType = "Visit"
	ActionLetter           ActionType = "Letter"
	ActionExtensionGranted ActionType = "ExtensionGranted"
	ActionPaymentPromise   ActionType = "PaymentPromise"
	ActionLegalNotice      ActionType = "LegalNotice"
	ActionNote             ActionType = "Note"
)

// CollectionAction is an append-only record of a collections interaction
type CollectionAction struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	LoanID           uuid.UUID        `json:"loan_id" db:"loan_id"`
	Stage            CollectionStage  `json:"stage" db:"stage"`
	ActionType       ActionType       `json:"action_type" db:"action_type"`
	Notes            string           `json:"notes,omitempty" db:"notes"`
	ContactName      string           `json:"contact_name,omitempty" db:"contact_name"`
	ContactPhone     string           `json:"contact_phone,omitempty" db:"contact_phone"`
	ContactResult    string           `json:"contact_result,omitempty" db:"contact_result"`
	ExtensionGranted bool             `json:"extension_granted" db:"extension_granted"`
	ExtensionDays    *int             `json:"extension_days,omitempty" db:"extension_days"`
	NewDueDate       *time.Time       `json:"new_due_date,omitempty" db:"new_due_date"`
	PromiseAmount    *decimal.Decimal `json:"promise_amount,omitempty" db:"promise_amount"`
	PromiseDate      *time.Time       `json:"promise_date,omitempty" db:"promise_date"`
	// PromiseKept is never set by the engine.
	PromiseKept      *bool      `json:"promise_kept,omitempty" db:"promise_kept"`
	EscalatedToLegal bool       `json:"escalated_to_legal" db:"escalated_to_legal"`
	EscalationDate   *time.Time `json:"escalation_date,omitempty" db:"escalation_date"`
	CreatedBy        uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// CollectionActionRequest represents a collection interaction being logged
type CollectionActionRequest struct {
	ActionType    ActionType       `json:"action_type"`
	Notes         string           `json:"notes,omitempty"`
	ContactName   string           `json:"contact_name,omitempty"`
	ContactPhone  string           `json:"contact_phone,omitempty"`
	ContactResult string           `json:"contact_result,omitempty"`
	PromiseAmount *decimal.Decimal `json:"promise_amount,omitempty"`
	PromiseDate   string           `json:"promise_date,omitempty"`
}

// Validate validates a logged collection action. Extensions and legal notices have
// dedicated operations and are rejected here.
func (r *CollectionActionRequest) Validate() error {
	var reasons []string

	switch r.ActionType {
	case ActionPhoneCall, ActionSMS, ActionEmail, ActionVisit, ActionLetter, ActionNote:
	case ActionPaymentPromise:
		if r.PromiseAmount == nil || !r.PromiseAmount.IsPositive() {
			reasons = append(reasons, "promise amount must be positive")
		}
		if _, err := ParseDate(r.PromiseDate); err != nil {
			reasons = append(reasons, "promise date must be YYYY-MM-DD")
		}
	case ActionExtensionGranted, ActionLegalNotice:
		reasons = append(reasons, fmt.Sprintf("%s must be recorded through its own operation", r.ActionType))
	default:
		reasons = append(reasons, fmt.Sprintf("unknown action type %q", r.ActionType))
	}

	return newValidationError(reasons)
}

// CollectionPolicy holds the delinquency thresholds in days
type CollectionPolicy struct {
	GracePeriodDays int
	ReminderDays    int
	DelinquentDays  int
	DefaultDays     int
	LegalReadyDays  int
}

// DefaultCollectionPolicy returns the standard thresholds
func DefaultCollectionPolicy() CollectionPolicy {
	return CollectionPolicy{
		GracePeriodDays: 5,
		ReminderDays:    15,
		DelinquentDays:  30,
		DefaultDays:     15,
		LegalReadyDays:  30,
	}
}

// Stage maps days past due onto a collections stage
func (p CollectionPolicy) Stage(daysPastDue int) CollectionStage {
	switch {
	case daysPastDue <= 0:
		return StageCurrent
	case daysPastDue <= p.GracePeriodDays:
		return StageGrace
	case daysPastDue <= p.ReminderDays:
		return StageReminder
	case daysPastDue <= p.DelinquentDays:
		return StageDelinquent
	default:
		return StageLegalReady
	}
}

// CheckDefault moves an overdue loan one step along Active -> Defaulted -> LegalReady.
// It reports whether the status changed.
func (p CollectionPolicy) CheckDefault(loan *Loan, asOf time.Time) (bool, error) {
	dpd := loan.DaysPastDue(asOf)

	switch {
	case loan.Status == LoanStatusDefaulted && dpd >= p.LegalReadyDays:
		return true, loan.TransitionTo(LoanStatusLegalReady)
	case loan.Status == LoanStatusActive && dpd >= p.DefaultDays:
		return true, loan.TransitionTo(LoanStatusDefaulted)
	}
	return false, nil
}

// NewCollectionAction builds an action for the loan at its current stage
func (l *Loan) NewCollectionAction(req *CollectionActionRequest, by uuid.UUID, asOf time.Time, policy CollectionPolicy) *CollectionAction {
	action := &CollectionAction{
		ID:            uuid.New(),
		LoanID:        l.ID,
		Stage:         policy.Stage(l.DaysPastDue(asOf)),
		ActionType:    req.ActionType,
		Notes:         req.Notes,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		ContactResult: req.ContactResult,
		PromiseAmount: req.PromiseAmount,
		CreatedBy:     by,
	}
	if d, err := ParseDate(req.PromiseDate); err == nil {
		action.PromiseDate = &d
	}
	return action
}

// GrantExtension pushes the oldest unpaid installment back by days and waives its late fee.
// The loan status is not changed.
func (l *Loan) GrantExtension(days int, by uuid.UUID, notes string, asOf time.Time, policy CollectionPolicy) (*CollectionAction, *PaymentScheduleItem, error) {
	if days <= 0 {
		return nil, nil, &ValidationError{Reasons: []string{"extension days must be positive"}}
	}

	item := l.OldestUnpaidItem()
	if item == nil {
		return nil, nil, ErrNothingToExtend
	}

	stage := policy.Stage(l.DaysPastDue(asOf))
	newDue := item.DueDate.AddDate(0, 0, days)

	item.DueDate = newDue
	item.LateFee = decimal.Zero

	action := &CollectionAction{
		ID:               uuid.New(),
		LoanID:           l.ID,
		Stage:            stage,
		ActionType:       ActionExtensionGranted,
		Notes:            notes,
		ExtensionGranted: true,
		ExtensionDays:    &days,
		NewDueDate:       &newDue,
		CreatedBy:        by,
	}
	return action, item, nil
}

// EscalateToLegal moves a Defaulted loan to LegalReady and returns the legal notice action
func (l *Loan) EscalateToLegal(by uuid.UUID, notes string, at time.Time) (*CollectionAction, error) {
	if l.Status != LoanStatusDefaulted {
		return nil, &TransitionError{From: l.Status, To: LoanStatusLegalReady}
	}
	if err := l.TransitionTo(LoanStatusLegalReady); err != nil {
		return nil, err
	}

	return &CollectionAction{
		ID:               uuid.New(),
		LoanID:           l.ID,
		Stage:            StageLegalReady,
		ActionType:       ActionLegalNotice,
		Notes:            notes,
		EscalatedToLegal: true,
		EscalationDate:   &at,
		CreatedBy:        by,
	}, nil
}

// SweepReport summarises one run of the daily collections sweep
type SweepReport struct {
	AsOf          time.Time       `json:"as_of"`
	LoansChecked  int             `json:"loans_checked"`
	FeesAssessed  decimal.Decimal `json:"fees_assessed"`
	ItemsCharged  int             `json:"items_charged"`
	Defaulted     int             `json:"defaulted"`
	LegalReady    int             `json:"legal_ready"`
	Reminders     int             `json:"reminders"`
	OverdueNotice int             `json:"overdue_notices"`
	Errors        int             `json:"errors"`
}

// ExtensionRequest asks to push the oldest unpaid installment back
type ExtensionRequest struct {
	Days  int    `json:"days"`
	Notes string `json:"notes,omitempty"`
}

// EscalationRequest asks to hand a defaulted loan to legal
type EscalationRequest struct {
	Notes string `json:"notes,omitempty"`
}

// DelinquentLoan is one row of the collections work queue
type DelinquentLoan struct {
	LoanID        uuid.UUID       `json:"loan_id"`
	LoanNumber    string          `json:"loan_number"`
	BorrowerName  string          `json:"borrower_name"`
	BorrowerPhone string          `json:"borrower_phone"`
	Status        LoanStatus      `json:"status"`
	DaysPastDue   int             `json:"days_past_due"`
	Stage         CollectionStage `json:"stage"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
}
