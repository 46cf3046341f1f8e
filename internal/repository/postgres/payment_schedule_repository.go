package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"lending-service/internal/models"
)

// ScheduleRepo is a PostgreSQL implementation of the repository.ScheduleRepository interface
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepository creates a new ScheduleRepo
func NewScheduleRepository(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

const scheduleColumns = `id, loan_id, payment_number, due_date, principal_due, interest_due,
             late_fee, is_paid, paid_date, created_at`

// GetByLoanID gets the schedule of a loan ordered by due date
func (r *ScheduleRepo) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.PaymentScheduleItem, error) {
	query := `SELECT ` + scheduleColumns + ` FROM payment_schedules
             WHERE loan_id = $1
             ORDER BY due_date, payment_number`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment schedule: %w", err)
	}
	defer rows.Close()

	return scanScheduleItems(rows)
}

// ReplaceForLoan makes items the loan's whole schedule. Rows whose id is not in items are
// deleted; the rest are upserted in a single statement, so payments keep their installment link.
// Call it inside WithinTx so the swap is atomic.
func (r *ScheduleRepo) ReplaceForLoan(ctx context.Context, loanID uuid.UUID, items []*models.PaymentScheduleItem) error {
	q := conn(ctx, r.db)

	keep := make([]string, len(items))
	for i, item := range items {
		keep[i] = item.ID.String()
	}

	// Drop installments that are not part of the new schedule
	if _, err := q.ExecContext(ctx,
		`DELETE FROM payment_schedules WHERE loan_id = $1 AND NOT (id = ANY($2::uuid[]))`,
		loanID, pq.Array(keep),
	); err != nil {
		return fmt.Errorf("failed to delete payment schedule: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	const cols = 9
	valueStrings := make([]string, 0, len(items))
	valueArgs := make([]interface{}, 0, len(items)*cols)

	for i, item := range items {
		n := i * cols
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8, n+9))

		valueArgs = append(valueArgs,
			item.ID,
			loanID,
			item.PaymentNumber,
			item.DueDate,
			item.PrincipalDue,
			item.InterestDue,
			item.LateFee,
			item.IsPaid,
			item.PaidDate,
		)
	}

	stmt := fmt.Sprintf(`INSERT INTO payment_schedules
                       (id, loan_id, payment_number, due_date, principal_due, interest_due,
                        late_fee, is_paid, paid_date)
                       VALUES %s
                       ON CONFLICT (id) DO UPDATE SET
                        payment_number = EXCLUDED.payment_number,
                        due_date = EXCLUDED.due_date,
                        principal_due = EXCLUDED.principal_due,
                        interest_due = EXCLUDED.interest_due,
                        late_fee = EXCLUDED.late_fee,
                        is_paid = EXCLUDED.is_paid,
                        paid_date = EXCLUDED.paid_date`, strings.Join(valueStrings, ","))

	if _, err := q.ExecContext(ctx, stmt, valueArgs...); err != nil {
		return fmt.Errorf("failed to upsert payment schedule: %w", err)
	}

	return nil
}

// Update persists the mutable fields of an installment
func (r *ScheduleRepo) Update(ctx context.Context, item *models.PaymentScheduleItem) error {
	query := `UPDATE payment_schedules
             SET due_date = $1, late_fee = $2, is_paid = $3, paid_date = $4
             WHERE id = $5`

	result, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		item.DueDate,
		item.LateFee,
		item.IsPaid,
		item.PaidDate,
		item.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update payment schedule: %w", err)
	}

	return checkAffected("payment schedule item", result)
}

// GetUnpaidDueBetween gets unpaid installments of Active loans due in [from, to]
func (r *ScheduleRepo) GetUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]*models.PaymentScheduleItem, error) {
	query := `SELECT ps.id, ps.loan_id, ps.payment_number, ps.due_date, ps.principal_due, ps.interest_due,
             ps.late_fee, ps.is_paid, ps.paid_date, ps.created_at
             FROM payment_schedules ps
             JOIN loans l ON ps.loan_id = l.id
             WHERE ps.is_paid = false AND ps.due_date BETWEEN $1 AND $2 AND l.status = $3
             ORDER BY ps.due_date`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, from, to, models.LoanStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming payments: %w", err)
	}
	defer rows.Close()

	return scanScheduleItems(rows)
}

// Helper function to scan multiple installments
func scanScheduleItems(rows *sql.Rows) ([]*models.PaymentScheduleItem, error) {
	var items []*models.PaymentScheduleItem

	for rows.Next() {
		item := &models.PaymentScheduleItem{}
		var paidDate sql.NullTime

		err := rows.Scan(
			&item.ID,
			&item.LoanID,
			&item.PaymentNumber,
			&item.DueDate,
			&item.PrincipalDue,
			&item.InterestDue,
			&item.LateFee,
			&item.IsPaid,
			&paidDate,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment schedule: %w", err)
		}

		item.DueDate = models.Date(item.DueDate)
		if paidDate.Valid {
			d := models.Date(paidDate.Time)
			item.PaidDate = &d
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
