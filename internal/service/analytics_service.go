package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// AnalyticsSvc is an implementation of the service.AnalyticsService interface
type AnalyticsSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	clock  func() time.Time
}

// NewAnalyticsService creates a new AnalyticsSvc
func NewAnalyticsService(deps Dependencies) *AnalyticsSvc {
	return &AnalyticsSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		clock:  deps.Clock,
	}
}

// Dashboard aggregates the whole loan book into portfolio metrics
func (s *AnalyticsSvc) Dashboard(ctx context.Context) (*models.PortfolioMetrics, error) {
	// Get all loans
	loans, err := s.repos.Loan.List(ctx, models.LoanFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}

	// Load schedule, payments and collateral for every loan
	for _, loan := range loans {
		if err := loadRelations(ctx, s.repos, loan, loadOptions{schedule: true, payments: true}); err != nil {
			s.logger.Warnf("Failed to load loan %s for dashboard: %v", loan.LoanNumber, err)
			continue
		}

		collateral, err := s.repos.Property.GetByID(ctx, loan.PropertyID)
		if err != nil {
			s.logger.Warnf("Failed to get collateral of loan %s: %v", loan.LoanNumber, err)
			continue
		}
		loan.Collateral = collateral
	}

	metrics := models.CalculatePortfolioMetrics(loans, today(s.clock))

	s.logger.WithFields(logrus.Fields{
		"loans":           len(loans),
		"active_loans":    metrics.ActiveLoans,
		"total_portfolio": metrics.TotalPortfolio.String(),
	}).Info("Generated portfolio dashboard")

	return metrics, nil
}
