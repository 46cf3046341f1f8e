package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"lending-service/internal/models"
)

// LoanRepo is a PostgreSQL implementation of the repository.LoanRepository interface
type LoanRepo struct {
	db *sql.DB
}

// NewLoanRepository creates a new LoanRepo
func NewLoanRepository(db *sql.DB) *LoanRepo {
	return &LoanRepo{db: db}
}

const loanColumns = `id, loan_number, borrower_id, property_id, product_id, loan_amount, interest_rate,
             term_months, ltv, status, application_date, approved_at, approved_by, approval_notes,
             disbursement_date, maturity_date, created_by, created_at, updated_at`

// Create creates a new loan in the database
func (r *LoanRepo) Create(ctx context.Context, loan *models.Loan) error {
	query := `INSERT INTO loans (id, loan_number, borrower_id, property_id, product_id, loan_amount,
             interest_rate, term_months, ltv, status, application_date, created_by)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		loan.ID,
		loan.LoanNumber,
		loan.BorrowerID,
		loan.PropertyID,
		loan.ProductID,
		loan.Amount,
		loan.InterestRate,
		loan.TermMonths,
		loan.LTV,
		loan.Status,
		loan.ApplicationDate,
		loan.CreatedBy,
	).Scan(&loan.CreatedAt, &loan.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// GetByID gets a loan by ID
func (r *LoanRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	loan, err := scanLoan(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("loan", err)
	}

	return loan, nil
}

// GetByIDForUpdate gets a loan by ID and locks its row for the rest of the transaction
func (r *LoanRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	loan, err := scanLoan(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("loan", err)
	}

	return loan, nil
}

// GetByStatuses gets all loans in any of the given statuses
func (r *LoanRepo) GetByStatuses(ctx context.Context, statuses []models.LoanStatus) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
             WHERE status = ANY($1)
             ORDER BY loan_number`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, pq.Array(statusStrings(statuses)))
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// List gets loans matching the filter, newest first
func (r *LoanRepo) List(ctx context.Context, filter models.LoanFilter) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
             WHERE (cardinality($1::text[]) = 0 OR status = ANY($1))
               AND ($2::uuid IS NULL OR borrower_id = $2)
             ORDER BY created_at DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, pq.Array(statusStrings(filter.Statuses)), filter.BorrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// Update persists status, approval and disbursement fields
func (r *LoanRepo) Update(ctx context.Context, loan *models.Loan) error {
	query := `UPDATE loans
             SET status = $1, approved_at = $2, approved_by = $3, approval_notes = $4,
                 disbursement_date = $5, maturity_date = $6, updated_at = NOW()
             WHERE id = $7
             RETURNING updated_at`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		loan.Status,
		loan.ApprovedAt,
		loan.ApprovedBy,
		loan.ApprovalNotes,
		loan.DisbursementDate,
		loan.MaturityDate,
		loan.ID,
	).Scan(&loan.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("loan %w", models.ErrNotFound)
		}
		return fmt.Errorf("failed to update loan: %w", err)
	}

	return nil
}

// NextSequence returns the next loan number sequence for a monthly prefix.
// It takes a transaction-scoped advisory lock on the prefix, so it must run inside WithinTx.
func (r *LoanRepo) NextSequence(ctx context.Context, prefix string) (int, error) {
	q := conn(ctx, r.db)

	if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix); err != nil {
		return 0, fmt.Errorf("failed to lock loan number sequence: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT loan_number FROM loans WHERE loan_number LIKE $1 || '-%'`,
		prefix,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to get loan numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return 0, fmt.Errorf("failed to scan loan number: %w", err)
		}
		numbers = append(numbers, number)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating loan numbers: %w", err)
	}

	// Text order breaks past 9999, so the highest sequence is picked numerically
	return models.NextLoanSequence(numbers)
}

func statusStrings(statuses []models.LoanStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanLoans(rows *sql.Rows) ([]*models.Loan, error) {
	var loans []*models.Loan

	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return loans, nil
}

func scanLoan(row rowScanner) (*models.Loan, error) {
	loan := &models.Loan{}
	var (
		approvedAt       sql.NullTime
		approvedBy       uuid.NullUUID
		disbursementDate sql.NullTime
		maturityDate     sql.NullTime
	)

	err := row.Scan(
		&loan.ID,
		&loan.LoanNumber,
		&loan.BorrowerID,
		&loan.PropertyID,
		&loan.ProductID,
		&loan.Amount,
		&loan.InterestRate,
		&loan.TermMonths,
		&loan.LTV,
		&loan.Status,
		&loan.ApplicationDate,
		&approvedAt,
		&approvedBy,
		&loan.ApprovalNotes,
		&disbursementDate,
		&maturityDate,
		&loan.CreatedBy,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if approvedAt.Valid {
		loan.ApprovedAt = &approvedAt.Time
	}
	if approvedBy.Valid {
		loan.ApprovedBy = &approvedBy.UUID
	}
	if disbursementDate.Valid {
		d := models.Date(disbursementDate.Time)
		loan.DisbursementDate = &d
	}
	if maturityDate.Valid {
		d := models.Date(maturityDate.Time)
		loan.MaturityDate = &d
	}
	loan.ApplicationDate = models.Date(loan.ApplicationDate)

	return loan, nil
}
