package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// CollectionHandler handles delinquency workflow HTTP requests
type CollectionHandler struct {
	collectionService service.CollectionService
	logger            *logrus.Logger
	config            *configs.Config
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collectionService service.CollectionService, logger *logrus.Logger, config *configs.Config) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
		logger:            logger,
		config:            config,
	}
}

// History lists the collection actions logged on a loan
func (h *CollectionHandler) History(w http.ResponseWriter, r *http.Request) {
	// Get loan ID from URL parameters
	loanID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	actions, err := h.collectionService.History(r.Context(), loanID)
	if err != nil {
		respondWithServiceError(w, h.logger, "get collection history", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "collection history retrieved successfully", actions)
}

// LogAction records a contact attempt or promise
func (h *CollectionHandler) LogAction(w http.ResponseWriter, r *http.Request) {
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
	var req models.CollectionActionRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	action, err := h.collectionService.LogAction(r.Context(), loanID, &req, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, "log collection action", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusCreated, "collection action logged successfully", action)
}

// GrantExtension pushes the oldest unpaid due date forward
func (h *CollectionHandler) GrantExtension(w http.ResponseWriter, r *http.Request) {
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
	var req models.ExtensionRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	action, err := h.collectionService.GrantExtension(r.Context(), loanID, &req, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, "grant extension", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusCreated, "extension granted successfully", action)
}

// Escalate hands a defaulted loan to legal
func (h *CollectionHandler) Escalate(w http.ResponseWriter, r *http.Request) {
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
	var req models.EscalationRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	action, err := h.collectionService.EscalateToLegal(r.Context(), loanID, &req, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, "escalate loan", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusCreated, "loan escalated to legal successfully", action)
}

// Delinquent returns the collections queue ordered by days past due
func (h *CollectionHandler) Delinquent(w http.ResponseWriter, r *http.Request) {
	queue, err := h.collectionService.Delinquent(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "list delinquent loans", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "delinquent loans retrieved successfully", queue)
}

// RunSweep runs the daily delinquency sweep on demand
func (h *CollectionHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.collectionService.RunDailySweep(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "run sweep", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "sweep completed", report)
}
