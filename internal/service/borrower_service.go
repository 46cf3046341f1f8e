package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// BorrowerSvc is an implementation of the service.BorrowerService interface
type BorrowerSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	clock  func() time.Time
}

// NewBorrowerService creates a new BorrowerSvc
func NewBorrowerService(deps Dependencies) *BorrowerSvc {
	return &BorrowerSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		clock:  deps.Clock,
	}
}

// Create registers a borrower with Pending verification
func (s *BorrowerSvc) Create(ctx context.Context, req *models.BorrowerCreate) (*models.Borrower, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Create the borrower
	borrower := req.ToBorrower()
	if err := s.repos.Borrower.Create(ctx, borrower); err != nil {
		return nil, fmt.Errorf("failed to create borrower: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"borrower_id": borrower.ID,
		"dpi":         borrower.MaskedDPI(),
	}).Info("Borrower registered")

	return borrower, nil
}

// GetByID gets a borrower by ID
func (s *BorrowerSvc) GetByID(ctx context.Context, id uuid.UUID) (*models.Borrower, error) {
	borrower, err := s.repos.Borrower.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get borrower: %w", err)
	}
	return borrower, nil
}

// List lists all borrowers
func (s *BorrowerSvc) List(ctx context.Context) ([]*models.Borrower, error) {
	borrowers, err := s.repos.Borrower.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowers: %w", err)
	}
	return borrowers, nil
}

// Verify completes KYC for the borrower
func (s *BorrowerSvc) Verify(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Borrower, error) {
	var borrower *models.Borrower

	// Start a transaction
	err := s.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		borrower, err = s.repos.Borrower.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get borrower: %w", err)
		}

		borrower.Verify(userID, s.clock())
		if err := s.repos.Borrower.Update(ctx, borrower); err != nil {
			return fmt.Errorf("failed to update borrower: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Borrower %s verified by %s", borrower.ID, userID)
	return borrower, nil
}

// Properties lists the collateral registered to a borrower
func (s *BorrowerSvc) Properties(ctx context.Context, id uuid.UUID) ([]*models.Property, error) {
	// Check if borrower exists
	if _, err := s.repos.Borrower.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get borrower: %w", err)
	}

	properties, err := s.repos.Property.GetByBorrowerID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get properties: %w", err)
	}
	return properties, nil
}
