package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// DocumentHandler handles loan document HTTP requests
type DocumentHandler struct {
	documentService service.DocumentService
	logger          *logrus.Logger
	config          *configs.Config
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService service.DocumentService, logger *logrus.Logger, config *configs.Config) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
		config:          config,
	}
}

// Create attaches document metadata to a loan
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Get loan ID from URL parameters
	loanID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Get user ID from context (set by auth middleware)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	// Parse request body
	var req models.DocumentCreate
	if !decodeBody(w, r, &req, false) {
		return
	}

	doc, err := h.documentService.Create(r.Context(), loanID, &req, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, "create document", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusCreated, "document created successfully", doc)
}

// GetAll lists documents attached to a loan
func (h *DocumentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	// Get loan ID from URL parameters
	loanID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	docs, err := h.documentService.List(r.Context(), loanID)
	if err != nil {
		respondWithServiceError(w, h.logger, "list documents", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "documents retrieved successfully", docs)
}

// UpdateStatus records a change in signing status
func (h *DocumentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	// Get document ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		ExecutionStatus models.ExecutionStatus `json:"execution_status"`
	}

	// Parse request body
	if !decodeBody(w, r, &req, false) {
		return
	}

	doc, err := h.documentService.UpdateStatus(r.Context(), id, req.ExecutionStatus)
	if err != nil {
		respondWithServiceError(w, h.logger, "update document status", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "document updated successfully", doc)
}
