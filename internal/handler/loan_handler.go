package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// LoanHandler handles loan lifecycle HTTP requests
type LoanHandler struct {
	loanService service.LoanService
	logger      *logrus.Logger
	config      *configs.Config
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService service.LoanService, logger *logrus.Logger, config *configs.Config) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
		config:      config,
	}
}

// Create handles a new loan application
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Get user ID from context (set by auth middleware)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	// Parse request body
	var req models.LoanRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	loan, err := h.loanService.Create(r.Context(), &req, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, "create loan", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusCreated, "loan created successfully", loan)
}

// GetAll lists loans, filtered by ?status= (repeatable or comma separated) and ?borrower_id=
func (h *LoanHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var filter models.LoanFilter
	query := r.URL.Query()

	for _, raw := range query["status"] {
		for _, s := range strings.Split(raw, ",") {
			status := models.LoanStatus(strings.TrimSpace(s))
			if !status.Valid() {
				utils.RespondWithError(w, http.StatusBadRequest, "invalid status filter: "+s)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	if raw := query.Get("borrower_id"); raw != "" {
		borrowerID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid borrower_id")
			return
		}
		filter.BorrowerID = &borrowerID
	}

	loans, err := h.loanService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, "list loans", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "loans retrieved successfully", loans)
}

// GetByID returns the full loan aggregate
func (h *LoanHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	// Get loan ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	loan, err := h.loanService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "get loan", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "loan retrieved successfully", loan)
}

type loanAction func(*LoanHandler, *http.Request, uuid.UUID, uuid.UUID) (*models.Loan, error)

// lifecycle runs a status changing action against the loan in the path
func (h *LoanHandler) lifecycle(w http.ResponseWriter, r *http.Request, what string, action loanAction) {
	// Get loan ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Get user ID from context (set by auth middleware)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	loan, err := action(h, r, id, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, what+" loan", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "loan "+what+" successfully", loan)
}

// Submit moves a draft to review
func (h *LoanHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "submitted", func(h *LoanHandler, r *http.Request, id, userID uuid.UUID) (*models.Loan, error) {
		return h.loanService.Submit(r.Context(), id, userID)
	})
}

// Return sends a loan under review back to draft
func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "returned", func(h *LoanHandler, r *http.Request, id, userID uuid.UUID) (*models.Loan, error) {
		return h.loanService.Return(r.Context(), id, userID)
	})
}

// Approve runs the approval gate. The body may carry {"notes": "..."}.
func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}

	// Parse request body
	if !decodeBody(w, r, &req, true) {
		return
	}

	h.lifecycle(w, r, "approved", func(h *LoanHandler, r *http.Request, id, userID uuid.UUID) (*models.Loan, error) {
		return h.loanService.Approve(r.Context(), id, userID, req.Notes)
	})
}

// Activate disburses an approved loan and generates its schedule
func (h *LoanHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "activated", func(h *LoanHandler, r *http.Request, id, userID uuid.UUID) (*models.Loan, error) {
		return h.loanService.Activate(r.Context(), id, userID)
	})
}

// Transition moves the loan to the status named in {"status": "..."}
func (h *LoanHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.LoanStatus `json:"status"`
	}

	// Parse request body
	if !decodeBody(w, r, &req, false) {
		return
	}
	if !req.Status.Valid() {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid status: "+string(req.Status))
		return
	}

	h.lifecycle(w, r, "transitioned", func(h *LoanHandler, r *http.Request, id, userID uuid.UUID) (*models.Loan, error) {
		return h.loanService.Transition(r.Context(), id, req.Status, userID)
	})
}

// GetSchedule returns the installments with their totals
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	// Get loan ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	items, summary, err := h.loanService.GetSchedule(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "get schedule", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "schedule retrieved successfully", map[string]interface{}{
		"items":   items,
		"summary": summary,
	})
}

// ExportSchedule writes the schedule as an XML document
func (h *LoanHandler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	// Get loan ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	data, err := h.loanService.ExportScheduleXML(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "export schedule", err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// RegenerateSchedule rebuilds the unpaid installments of an active loan
func (h *LoanHandler) RegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	// Get loan ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Get user ID from context (set by auth middleware)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.loanService.RegenerateSchedule(r.Context(), id, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, "regenerate schedule", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "schedule regenerated successfully", items)
}

// Summary returns the balances and delinquency position of the loan
func (h *LoanHandler) Summary(w http.ResponseWriter, r *http.Request) {
	// Get loan ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	summary, err := h.loanService.Summary(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "get loan summary", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "loan summary retrieved successfully", summary)
}

// Checklist returns the required document checklist
func (h *LoanHandler) Checklist(w http.ResponseWriter, r *http.Request) {
	// Get loan ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	checklist, err := h.loanService.Checklist(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "get document checklist", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "checklist retrieved successfully", checklist)
}
