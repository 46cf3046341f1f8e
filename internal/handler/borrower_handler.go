package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// BorrowerHandler handles borrower HTTP requests
type BorrowerHandler struct {
	borrowerService service.BorrowerService
	logger          *logrus.Logger
	config          *configs.Config
}

// NewBorrowerHandler creates a new BorrowerHandler
func NewBorrowerHandler(borrowerService service.BorrowerService, logger *logrus.Logger, config *configs.Config) *BorrowerHandler {
	return &BorrowerHandler{
		borrowerService: borrowerService,
		logger:          logger,
		config:          config,
	}
}

// Create handles borrower registration
func (h *BorrowerHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var req models.BorrowerCreate
	if !decodeBody(w, r, &req, false) {
		return
	}

	borrower, err := h.borrowerService.Create(r.Context(), &req)
	if err != nil {
		respondWithServiceError(w, h.logger, "create borrower", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusCreated, "borrower created successfully", borrower)
}

// GetAll lists borrowers
func (h *BorrowerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	borrowers, err := h.borrowerService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "list borrowers", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "borrowers retrieved successfully", borrowers)
}

// GetByID returns a single borrower
func (h *BorrowerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	// Get borrower ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	borrower, err := h.borrowerService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "get borrower", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "borrower retrieved successfully", borrower)
}

// Verify marks the borrower identity as checked
func (h *BorrowerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	// Get borrower ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Get user ID from context (set by auth middleware)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	borrower, err := h.borrowerService.Verify(r.Context(), id, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, "verify borrower", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "borrower verified successfully", borrower)
}

// Properties lists the collateral owned by a borrower
func (h *BorrowerHandler) Properties(w http.ResponseWriter, r *http.Request) {
	// Get borrower ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	properties, err := h.borrowerService.Properties(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "list borrower properties", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "properties retrieved successfully", properties)
}
