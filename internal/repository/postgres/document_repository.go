package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lending-service/internal/models"
)

// DocumentRepo is a PostgreSQL implementation of the repository.DocumentRepository interface
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepository creates a new DocumentRepo
func NewDocumentRepository(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = `id, loan_id, document_type, name, execution_status, uploaded_by, created_at, updated_at`

// Create registers document metadata
func (r *DocumentRepo) Create(ctx context.Context, d *models.Document) error {
	query := `INSERT INTO documents (id, loan_id, document_type, name, execution_status, uploaded_by)
             VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		d.ID,
		d.LoanID,
		d.DocumentType,
		d.Name,
		d.ExecutionStatus,
		d.UploadedBy,
	).Scan(&d.CreatedAt, &d.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetByID gets a document by ID
func (r *DocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	d := &models.Document{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.LoanID,
		&d.DocumentType,
		&d.Name,
		&d.ExecutionStatus,
		&d.UploadedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, notFound("document", err)
	}

	return d, nil
}

// GetByLoanID gets all documents of a loan, newest first per type
func (r *DocumentRepo) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
             WHERE loan_id = $1
             ORDER BY document_type, updated_at DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		d := &models.Document{}
		err := rows.Scan(
			&d.ID,
			&d.LoanID,
			&d.DocumentType,
			&d.Name,
			&d.ExecutionStatus,
			&d.UploadedBy,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return documents, nil
}

// UpdateStatus sets the execution status of a document
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExecutionStatus) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE documents SET execution_status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	return checkAffected("document", result)
}
