package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// PropertyHandler handles collateral HTTP requests
type PropertyHandler struct {
	propertyService service.PropertyService
	logger          *logrus.Logger
	config          *configs.Config
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyService service.PropertyService, logger *logrus.Logger, config *configs.Config) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		logger:          logger,
		config:          config,
	}
}

// Create registers a property offered as collateral
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req models.PropertyCreate
	if !decodeBody(w, r, &req, false) {
		return
	}

	property, err := h.propertyService.Create(r.Context(), &req)
	if err != nil {
		respondWithServiceError(w, h.logger, "create property", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusCreated, "property created successfully", property)
}

// GetByID returns a property with its liens
func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	// Get property ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	property, err := h.propertyService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "get property", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "property retrieved successfully", property)
}

// Verify records the legal review of the property
func (h *PropertyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	// Get property ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Get user ID from context (set by auth middleware)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	property, err := h.propertyService.Verify(r.Context(), id, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, "verify property", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "property verified successfully", property)
}
