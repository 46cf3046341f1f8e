package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// loadOptions selects which parts of the loan aggregate are read
type loadOptions struct {
	forUpdate bool
	parties   bool // product, borrower and collateral with liens
	schedule  bool
	payments  bool
	documents bool
}

var (
	loadAll      = loadOptions{parties: true, schedule: true, payments: true, documents: true}
	loadSchedule = loadOptions{parties: true, schedule: true}
)

// loadLoan reads a loan and the entities the engine works on.
// With forUpdate the loan row stays locked until the surrounding transaction ends.
func loadLoan(ctx context.Context, repos *repository.Repository, id uuid.UUID, opts loadOptions) (*models.Loan, error) {
	var (
		loan *models.Loan
		err  error
	)
	if opts.forUpdate {
		loan, err = repos.Loan.GetByIDForUpdate(ctx, id)
	} else {
		loan, err = repos.Loan.GetByID(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	if err := loadRelations(ctx, repos, loan, opts); err != nil {
		return nil, err
	}
	return loan, nil
}

func loadRelations(ctx context.Context, repos *repository.Repository, loan *models.Loan, opts loadOptions) error {
	var err error

	if opts.parties {
		if loan.Product, err = repos.Product.GetByID(ctx, loan.ProductID); err != nil {
			return fmt.Errorf("failed to get loan product: %w", err)
		}
		if loan.Borrower, err = repos.Borrower.GetByID(ctx, loan.BorrowerID); err != nil {
			return fmt.Errorf("failed to get borrower: %w", err)
		}
		if loan.Collateral, err = repos.Property.GetByID(ctx, loan.PropertyID); err != nil {
			return fmt.Errorf("failed to get collateral: %w", err)
		}
		if loan.Collateral.Liens, err = repos.Property.GetLiens(ctx, loan.PropertyID); err != nil {
			return fmt.Errorf("failed to get collateral liens: %w", err)
		}
	}

	if opts.schedule {
		if loan.Schedule, err = repos.Schedule.GetByLoanID(ctx, loan.ID); err != nil {
			return fmt.Errorf("failed to get payment schedule: %w", err)
		}
	}

	if opts.payments {
		if loan.Payments, err = repos.Payment.GetByLoanID(ctx, loan.ID); err != nil {
			return fmt.Errorf("failed to get payments: %w", err)
		}
	}

	if opts.documents {
		if loan.Documents, err = repos.Document.GetByLoanID(ctx, loan.ID); err != nil {
			return fmt.Errorf("failed to get documents: %w", err)
		}
	}

	return nil
}

// saveScheduleItems persists installments changed in memory
func saveScheduleItems(ctx context.Context, repos *repository.Repository, items []*models.PaymentScheduleItem) error {
	for _, item := range items {
		if err := repos.Schedule.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update installment %d: %w", item.PaymentNumber, err)
		}
	}
	return nil
}
