package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lending-service/internal/models"
)

// BorrowerRepo is a PostgreSQL implementation of the repository.BorrowerRepository interface
type BorrowerRepo struct {
	db *sql.DB
}

// NewBorrowerRepository creates a new BorrowerRepo
func NewBorrowerRepository(db *sql.DB) *BorrowerRepo {
	return &BorrowerRepo{db: db}
}

const borrowerColumns = `id, full_name, dpi, nit, phone, email, address, monthly_income,
             verification_status, verified_by, verified_at, risk_tier, created_at, updated_at`

// Create creates a new borrower in the database
func (r *BorrowerRepo) Create(ctx context.Context, b *models.Borrower) error {
	query := `INSERT INTO borrowers (id, full_name, dpi, nit, phone, email, address,
             monthly_income, verification_status, risk_tier)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		b.ID,
		b.FullName,
		b.DPI,
		b.NIT,
		b.Phone,
		b.Email,
		b.Address,
		b.MonthlyIncome,
		b.VerificationStatus,
		b.RiskTier,
	).Scan(&b.CreatedAt, &b.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create borrower: %w", err)
	}

	return nil
}

// GetByID gets a borrower by ID
func (r *BorrowerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE id = $1`

	b, err := scanBorrower(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("borrower", err)
	}

	return b, nil
}

// List gets all borrowers ordered by name
func (r *BorrowerRepo) List(ctx context.Context) ([]*models.Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers ORDER BY full_name`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get borrowers: %w", err)
	}
	defer rows.Close()

	var borrowers []*models.Borrower
	for rows.Next() {
		b, err := scanBorrower(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan borrower: %w", err)
		}
		borrowers = append(borrowers, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return borrowers, nil
}

// Update updates the mutable borrower fields
func (r *BorrowerRepo) Update(ctx context.Context, b *models.Borrower) error {
	query := `UPDATE borrowers
             SET full_name = $1, nit = $2, phone = $3, email = $4, address = $5, monthly_income = $6,
                 verification_status = $7, verified_by = $8, verified_at = $9, risk_tier = $10, updated_at = NOW()
             WHERE id = $11`

	result, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		b.FullName,
		b.NIT,
		b.Phone,
		b.Email,
		b.Address,
		b.MonthlyIncome,
		b.VerificationStatus,
		b.VerifiedBy,
		b.VerifiedAt,
		b.RiskTier,
		b.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update borrower: %w", err)
	}

	return checkAffected("borrower", result)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBorrower(row rowScanner) (*models.Borrower, error) {
	b := &models.Borrower{}
	var verifiedBy uuid.NullUUID
	var verifiedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.FullName,
		&b.DPI,
		&b.NIT,
		&b.Phone,
		&b.Email,
		&b.Address,
		&b.MonthlyIncome,
		&b.VerificationStatus,
		&verifiedBy,
		&verifiedAt,
		&b.RiskTier,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if verifiedBy.Valid {
		b.VerifiedBy = &verifiedBy.UUID
	}
	if verifiedAt.Valid {
		b.VerifiedAt = &verifiedAt.Time
	}

	return b, nil
}
