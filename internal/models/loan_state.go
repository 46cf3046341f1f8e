package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// loanStatusTransitions is the only place allowed status moves are defined
var loanStatusTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusDraft:       {LoanStatusUnderReview},
	LoanStatusUnderReview: {LoanStatusApproved, LoanStatusDraft},
	LoanStatusApproved:    {LoanStatusActive},
	LoanStatusActive:      {LoanStatusMatured, LoanStatusDefaulted, LoanStatusClosed},
	LoanStatusMatured:     {LoanStatusDefaulted, LoanStatusClosed},
	LoanStatusDefaulted:   {LoanStatusLegalReady, LoanStatusClosed},
	LoanStatusLegalReady:  {LoanStatusClosed},
	LoanStatusClosed:      {},
}

// AllowedTransitions returns the statuses reachable from s
func AllowedTransitions(s LoanStatus) []LoanStatus {
	next := loanStatusTransitions[s]
	out := make([]LoanStatus, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether the loan may move to target
func (l *Loan) CanTransitionTo(target LoanStatus) bool {
	for _, s := range loanStatusTransitions[l.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo moves the loan to target or returns a *TransitionError
func (l *Loan) TransitionTo(target LoanStatus) error {
	if !l.CanTransitionTo(target) {
		return &TransitionError{From: l.Status, To: target}
	}
	l.Status = target
	return nil
}

// ValidateForApproval collects every unmet approval pre-condition.
// The loan's Product, Borrower and Collateral (with liens) must be loaded.
func (l *Loan) ValidateForApproval() error {
	var reasons []string

	if l.Borrower == nil || !l.Borrower.IsVerified() {
		reasons = append(reasons, "Borrower must be verified")
	}

	if l.Collateral == nil || !l.Collateral.Verified {
		reasons = append(reasons, "Property must be verified by Legal")
	}
	if l.Collateral != nil && l.Collateral.HasOtherActiveLoan(l.ID) {
		reasons = append(reasons, "Property already has an active loan")
	}

	if l.Product == nil {
		reasons = append(reasons, "Loan product is missing")
		return newValidationError(reasons)
	}

	if l.LTV.GreaterThan(l.Product.MaxLTV) {
		reasons = append(reasons, fmt.Sprintf("LTV (%s%%) exceeds maximum (%s%%)",
			percent(l.LTV), percent(l.Product.MaxLTV)))
	}
	if l.Amount.LessThan(l.Product.MinAmount) {
		reasons = append(reasons, fmt.Sprintf("Loan amount below minimum (%s)", l.Product.MinAmount.StringFixed(2)))
	}
	if l.Amount.GreaterThan(l.Product.MaxAmount) {
		reasons = append(reasons, fmt.Sprintf("Loan amount exceeds maximum (%s)", l.Product.MaxAmount.StringFixed(2)))
	}

	return newValidationError(reasons)
}

// ValidateForActivation checks every required legal document is executed
func (l *Loan) ValidateForActivation() error {
	var reasons []string
	for _, item := range l.DocumentChecklist() {
		if !item.IsComplete {
			reasons = append(reasons, fmt.Sprintf("%s must be executed (current status: %s)", item.Name, item.Status))
		}
	}
	return newValidationError(reasons)
}

// Approve moves an UnderReview loan to Approved once every approval gate passes.
// On any error the loan is left untouched.
func (l *Loan) Approve(approver uuid.UUID, notes string, at time.Time) error {
	if !l.CanTransitionTo(LoanStatusApproved) {
		return &TransitionError{From: l.Status, To: LoanStatusApproved}
	}
	if err := l.ValidateForApproval(); err != nil {
		return err
	}

	l.Status = LoanStatusApproved
	l.ApprovedBy = &approver
	l.ApprovedAt = &at
	l.ApprovalNotes = notes
	return nil
}

// Activate disburses an Approved loan on asOf and generates its payment schedule
func (l *Loan) Activate(asOf time.Time) error {
	if !l.CanTransitionTo(LoanStatusActive) {
		return &TransitionError{From: l.Status, To: LoanStatusActive}
	}
	if err := l.ValidateForActivation(); err != nil {
		return err
	}

	disbursed := Date(asOf)
	maturity := l.CalculateMaturityDate(disbursed)

	// Build the schedule on a copy so a failure leaves the loan as it was
	draft := *l
	draft.DisbursementDate = &disbursed
	schedule, err := GeneratePaymentSchedule(&draft)
	if err != nil {
		return fmt.Errorf("failed to generate payment schedule: %w", err)
	}

	l.Status = LoanStatusActive
	l.DisbursementDate = &disbursed
	l.MaturityDate = &maturity
	l.Schedule = schedule
	return nil
}
