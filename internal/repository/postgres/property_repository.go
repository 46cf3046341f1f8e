package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lending-service/internal/models"
)

// PropertyRepo is a PostgreSQL implementation of the repository.PropertyRepository interface
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepository creates a new PropertyRepo
func NewPropertyRepository(db *sql.DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

const propertyColumns = `id, borrower_id, property_type, finca, folio, libro, department, municipality,
             address, market_value, appraised_value, verified, verified_by, verified_at, created_at, updated_at`

// Create creates a new property in the database
func (r *PropertyRepo) Create(ctx context.Context, p *models.Property) error {
	query := `INSERT INTO properties (id, borrower_id, property_type, finca, folio, libro,
             department, municipality, address, market_value, appraised_value)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		p.ID,
		p.BorrowerID,
		p.PropertyType,
		p.Finca,
		p.Folio,
		p.Libro,
		p.Department,
		p.Municipality,
		p.Address,
		p.MarketValue,
		p.AppraisedValue,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	return nil
}

// GetByID gets a property by ID
func (r *PropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("property", err)
	}

	return p, nil
}

// GetByBorrowerID gets all properties of a borrower
func (r *PropertyRepo) GetByBorrowerID(ctx context.Context, borrowerID uuid.UUID) ([]*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties
             WHERE borrower_id = $1
             ORDER BY created_at`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get properties: %w", err)
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return properties, nil
}

// GetLiens gets every loan filed against a property
func (r *PropertyRepo) GetLiens(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyLien, error) {
	query := `SELECT id, loan_number, status FROM loans WHERE property_id = $1 ORDER BY created_at`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get liens: %w", err)
	}
	defer rows.Close()

	var liens []models.PropertyLien
	for rows.Next() {
		var lien models.PropertyLien
		if err := rows.Scan(&lien.LoanID, &lien.LoanNumber, &lien.Status); err != nil {
			return nil, fmt.Errorf("failed to scan lien: %w", err)
		}
		liens = append(liens, lien)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return liens, nil
}

// Update updates the mutable property fields
func (r *PropertyRepo) Update(ctx context.Context, p *models.Property) error {
	query := `UPDATE properties
             SET address = $1, market_value = $2, appraised_value = $3, verified = $4,
                 verified_by = $5, verified_at = $6, updated_at = NOW()
             WHERE id = $7`

	result, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		p.Address,
		p.MarketValue,
		p.AppraisedValue,
		p.Verified,
		p.VerifiedBy,
		p.VerifiedAt,
		p.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	return checkAffected("property", result)
}

func scanProperty(row rowScanner) (*models.Property, error) {
	p := &models.Property{}
	var verifiedBy uuid.NullUUID
	var verifiedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.BorrowerID,
		&p.PropertyType,
		&p.Finca,
		&p.Folio,
		&p.Libro,
		&p.Department,
		&p.Municipality,
		&p.Address,
		&p.MarketValue,
		&p.AppraisedValue,
		&p.Verified,
		&verifiedBy,
		&verifiedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if verifiedBy.Valid {
		p.VerifiedBy = &verifiedBy.UUID
	}
	if verifiedAt.Valid {
		p.VerifiedAt = &verifiedAt.Time
	}

	return p, nil
}
