package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lending-service/internal/models"
)

// ProductRepo is a PostgreSQL implementation of the repository.ProductRepository interface
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepo
func NewProductRepository(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, name, description, min_amount, max_amount, min_term_months, max_term_months,
             interest_rate, max_ltv, late_fee_rate, is_active, created_at`

// Create creates a new loan product in the database
func (r *ProductRepo) Create(ctx context.Context, p *models.LoanProduct) error {
	query := `INSERT INTO loan_products (id, name, description, min_amount, max_amount, min_term_months,
             max_term_months, interest_rate, max_ltv, late_fee_rate, is_active)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING created_at`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		p.ID,
		p.Name,
		p.Description,
		p.MinAmount,
		p.MaxAmount,
		p.MinTermMonths,
		p.MaxTermMonths,
		p.InterestRate,
		p.MaxLTV,
		p.LateFeeRate,
		p.IsActive,
	).Scan(&p.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create loan product: %w", err)
	}

	return nil
}

// GetByID gets a loan product by ID
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.LoanProduct, error) {
	query := `SELECT ` + productColumns + ` FROM loan_products WHERE id = $1`

	p, err := scanProduct(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("loan product", err)
	}

	return p, nil
}

// GetByName gets a loan product by its unique name
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*models.LoanProduct, error) {
	query := `SELECT ` + productColumns + ` FROM loan_products WHERE name = $1`

	p, err := scanProduct(conn(ctx, r.db).QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, notFound("loan product", err)
	}

	return p, nil
}

// List gets loan products, optionally only the active ones
func (r *ProductRepo) List(ctx context.Context, activeOnly bool) ([]*models.LoanProduct, error) {
	query := `SELECT ` + productColumns + ` FROM loan_products
             WHERE ($1 = false OR is_active = true)
             ORDER BY name`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan products: %w", err)
	}
	defer rows.Close()

	var products []*models.LoanProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// SetActive toggles whether new loans can be filed under a product
func (r *ProductRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE loan_products SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update loan product: %w", err)
	}

	return checkAffected("loan product", result)
}

func scanProduct(row rowScanner) (*models.LoanProduct, error) {
	p := &models.LoanProduct{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.MinAmount,
		&p.MaxAmount,
		&p.MinTermMonths,
		&p.MaxTermMonths,
		&p.InterestRate,
		&p.MaxLTV,
		&p.LateFeeRate,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
