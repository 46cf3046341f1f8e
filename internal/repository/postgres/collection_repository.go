package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lending-service/internal/models"
)

// CollectionRepo is a PostgreSQL implementation of the repository.CollectionRepository interface
type CollectionRepo struct {
	db *sql.DB
}

// NewCollectionRepository creates a new CollectionRepo
func NewCollectionRepository(db *sql.DB) *CollectionRepo {
	return &CollectionRepo{db: db}
}

// Create appends a collection action
func (r *CollectionRepo) Create(ctx context.Context, a *models.CollectionAction) error {
	query := `INSERT INTO collection_actions (id, loan_id, stage, action_type, notes, contact_name,
             contact_phone, contact_result, extension_granted, extension_days, new_due_date,
             promise_amount, promise_date, promise_kept, escalated_to_legal, escalation_date, created_by)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
             RETURNING created_at`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		a.ID,
		a.LoanID,
		a.Stage,
		a.ActionType,
		a.Notes,
		a.ContactName,
		a.ContactPhone,
		a.ContactResult,
		a.ExtensionGranted,
		a.ExtensionDays,
		a.NewDueDate,
		a.PromiseAmount,
		a.PromiseDate,
		a.PromiseKept,
		a.EscalatedToLegal,
		a.EscalationDate,
		a.CreatedBy,
	).Scan(&a.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create collection action: %w", err)
	}

	return nil
}

// GetByLoanID gets the collection history of a loan, newest first
func (r *CollectionRepo) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.CollectionAction, error) {
	query := `SELECT id, loan_id, stage, action_type, notes, contact_name, contact_phone, contact_result,
             extension_granted, extension_days, new_due_date, promise_amount, promise_date, promise_kept,
             escalated_to_legal, escalation_date, created_by, created_at
             FROM collection_actions
             WHERE loan_id = $1
             ORDER BY created_at DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection actions: %w", err)
	}
	defer rows.Close()

	var actions []*models.CollectionAction
	for rows.Next() {
		a := &models.CollectionAction{}
		var (
			extensionDays  sql.NullInt64
			newDueDate     sql.NullTime
			promiseAmount  decimal.NullDecimal
			promiseDate    sql.NullTime
			promiseKept    sql.NullBool
			escalationDate sql.NullTime
		)

		err := rows.Scan(
			&a.ID,
			&a.LoanID,
			&a.Stage,
			&a.ActionType,
			&a.Notes,
			&a.ContactName,
			&a.ContactPhone,
			&a.ContactResult,
			&a.ExtensionGranted,
			&extensionDays,
			&newDueDate,
			&promiseAmount,
			&promiseDate,
			&promiseKept,
			&a.EscalatedToLegal,
			&escalationDate,
			&a.CreatedBy,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection action: %w", err)
		}

		if extensionDays.Valid {
			days := int(extensionDays.Int64)
			a.ExtensionDays = &days
		}
		if newDueDate.Valid {
			a.NewDueDate = &newDueDate.Time
		}
		if promiseAmount.Valid {
			a.PromiseAmount = &promiseAmount.Decimal
		}
		if promiseDate.Valid {
			a.PromiseDate = &promiseDate.Time
		}
		if promiseKept.Valid {
			a.PromiseKept = &promiseKept.Bool
		}
		if escalationDate.Valid {
			a.EscalationDate = &escalationDate.Time
		}

		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return actions, nil
}
