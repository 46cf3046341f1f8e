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

// PropertySvc is an implementation of the service.PropertyService interface
type PropertySvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	clock  func() time.Time
}

// NewPropertyService creates a new PropertySvc
func NewPropertyService(deps Dependencies) *PropertySvc {
	return &PropertySvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		clock:  deps.Clock,
	}
}

// Create registers a collateral property for an existing borrower
func (s *PropertySvc) Create(ctx context.Context, req *models.PropertyCreate) (*models.Property, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Check if borrower exists
	if _, err := s.repos.Borrower.GetByID(ctx, req.BorrowerID); err != nil {
		return nil, fmt.Errorf("failed to get borrower: %w", err)
	}

	// Create the property
	property := req.ToProperty()
	if err := s.repos.Property.Create(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"property_id":  property.ID,
		"registry":     property.RegistryNumber(),
		"market_value": property.MarketValue.String(),
	}).Info("Property registered")

	return property, nil
}

// GetByID gets a property together with the loans filed against it
func (s *PropertySvc) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	property, err := s.repos.Property.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	// Get loans filed against the property
	liens, err := s.repos.Property.GetLiens(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get property liens: %w", err)
	}
	property.Liens = liens

	return property, nil
}

// Verify records the legal verification of the property title
func (s *PropertySvc) Verify(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Property, error) {
	var property *models.Property

	// Start a transaction
	err := s.repos.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		property, err = s.repos.Property.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get property: %w", err)
		}

		property.Verify(userID, s.clock())
		if err := s.repos.Property.Update(ctx, property); err != nil {
			return fmt.Errorf("failed to update property: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Property %s verified by %s", property.ID, userID)
	return property, nil
}
