package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// DocumentSvc is an implementation of the service.DocumentService interface
type DocumentSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
}

// NewDocumentService creates a new DocumentSvc
func NewDocumentService(deps Dependencies) *DocumentSvc {
	return &DocumentSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
	}
}

// Create registers a document against a loan with Pending execution status
func (s *DocumentSvc) Create(ctx context.Context, loanID uuid.UUID, req *models.DocumentCreate, userID uuid.UUID) (*models.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Check if loan exists
	if _, err := s.repos.Loan.GetByID(ctx, loanID); err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	// Create document record
	doc := &models.Document{
		ID:              uuid.New(),
		LoanID:          loanID,
		DocumentType:    req.DocumentType,
		Name:            req.Name,
		ExecutionStatus: models.ExecutionPending,
		UploadedBy:      userID,
	}
	if err := s.repos.Document.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"loan_id":  loanID,
		"document": doc.DocumentType,
	}).Info("Document registered")

	return doc, nil
}

// List lists the documents of a loan
func (s *DocumentSvc) List(ctx context.Context, loanID uuid.UUID) ([]*models.Document, error) {
	docs, err := s.repos.Document.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	return docs, nil
}

// UpdateStatus records a change in the signing state of a document
func (s *DocumentSvc) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExecutionStatus) (*models.Document, error) {
	if !status.Valid() {
		return nil, &models.ValidationError{Reasons: []string{fmt.Sprintf("unknown execution status %q", status)}}
	}

	if err := s.repos.Document.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	// Get the updated document
	doc, err := s.repos.Document.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	s.logger.Infof("Document %s is now %s", id, status)
	return doc, nil
}
