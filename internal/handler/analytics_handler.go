package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// AnalyticsHandler handles portfolio dashboard HTTP requests
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	logger           *logrus.Logger
	config           *configs.Config
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService service.AnalyticsService, logger *logrus.Logger, config *configs.Config) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
		config:           config,
	}
}

// Dashboard returns the portfolio metrics of the whole loan book
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	// Get portfolio metrics
	metrics, err := h.analyticsService.Dashboard(r.Context())
	if err != nil {
		h.logger.Warnf("Failed to get portfolio dashboard: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get portfolio dashboard")
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "portfolio dashboard retrieved successfully", metrics)
}
