package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lending-service/internal/models"
)

// PaymentRepo is a PostgreSQL implementation of the repository.PaymentRepository interface.
// Payments are immutable, so there is no update.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepository creates a new PaymentRepo
func NewPaymentRepository(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// Create records a payment
func (r *PaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	query := `INSERT INTO payments (id, loan_id, schedule_id, amount, payment_type, payment_date,
             payment_method, reference_number, notes, recorded_by)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		p.ID,
		p.LoanID,
		p.ScheduleID,
		p.Amount,
		p.Type,
		p.PaymentDate,
		p.Method,
		p.ReferenceNumber,
		p.Notes,
		p.RecordedBy,
	).Scan(&p.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByLoanID gets all payments of a loan in the order they were received
func (r *PaymentRepo) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.Payment, error) {
	query := `SELECT id, loan_id, schedule_id, amount, payment_type, payment_date, payment_method,
             reference_number, notes, recorded_by, created_at
             FROM payments
             WHERE loan_id = $1
             ORDER BY payment_date, created_at`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		var scheduleID uuid.NullUUID

		err := rows.Scan(
			&p.ID,
			&p.LoanID,
			&scheduleID,
			&p.Amount,
			&p.Type,
			&p.PaymentDate,
			&p.Method,
			&p.ReferenceNumber,
			&p.Notes,
			&p.RecordedBy,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		if scheduleID.Valid {
			p.ScheduleID = &scheduleID.UUID
		}
		p.PaymentDate = models.Date(p.PaymentDate)
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return payments, nil
}
