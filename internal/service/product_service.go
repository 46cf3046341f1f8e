package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// ProductSvc is an implementation of the service.ProductService interface
type ProductSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
}

// NewProductService creates a new ProductSvc
func NewProductService(deps Dependencies) *ProductSvc {
	return &ProductSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
	}
}

// Create creates a new loan product
func (s *ProductSvc) Create(ctx context.Context, product *models.LoanProduct) error {
	if err := product.Validate(); err != nil {
		return err
	}

	// Check if product name is taken
	_, err := s.repos.Product.GetByName(ctx, product.Name)
	if err == nil {
		return fmt.Errorf("product %q %w", product.Name, models.ErrAlreadyExists)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check product name: %w", err)
	}

	// Create the product
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := s.repos.Product.Create(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product":       product.Name,
		"interest_rate": product.InterestRate.String(),
		"max_ltv":       product.MaxLTV.String(),
	}).Info("Loan product created")

	return nil
}

// GetByID gets a loan product by ID
func (s *ProductSvc) GetByID(ctx context.Context, id uuid.UUID) (*models.LoanProduct, error) {
	product, err := s.repos.Product.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// List lists loan products
func (s *ProductSvc) List(ctx context.Context, activeOnly bool) ([]*models.LoanProduct, error) {
	products, err := s.repos.Product.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// SetActive enables or disables a product for new applications
func (s *ProductSvc) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repos.Product.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Infof("Loan product %s active: %t", id, active)
	return nil
}

// Seed inserts the catalogue products that do not exist yet and returns how many were added
func (s *ProductSvc) Seed(ctx context.Context, products []*models.LoanProduct) (int, error) {
	added := 0
	for _, product := range products {
		// Skip if product exists
		_, err := s.repos.Product.GetByName(ctx, product.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			return added, fmt.Errorf("failed to check product %q: %w", product.Name, err)
		}

		if err := s.Create(ctx, product); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
