package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *logrus.Logger
	config         *configs.Config
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService service.PaymentService, logger *logrus.Logger, config *configs.Config) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
		config:         config,
	}
}

// Record registers a payment and applies it to the schedule
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
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
	var req models.PaymentRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	result, err := h.paymentService.RecordPayment(r.Context(), loanID, &req, userID)
	if err != nil {
		respondWithServiceError(w, h.logger, "record payment", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusCreated, "payment recorded successfully", result)
}

// GetAll lists payments of a loan with per-type totals
func (h *PaymentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	// Get loan ID from URL parameters
	loanID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payments, totals, err := h.paymentService.List(r.Context(), loanID)
	if err != nil {
		respondWithServiceError(w, h.logger, "list payments", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "payments retrieved successfully", map[string]interface{}{
		"payments": payments,
		"totals":   totals,
	})
}
