package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/middleware"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// Dependencies contains handler dependencies
type Dependencies struct {
	Services *service.Service
	Logger   *logrus.Logger
	Config   *configs.Config
}

// Handler contains all HTTP handlers for the application
type Handler struct {
	User       *UserHandler
	Product    *ProductHandler
	Borrower   *BorrowerHandler
	Property   *PropertyHandler
	Loan       *LoanHandler
	Document   *DocumentHandler
	Payment    *PaymentHandler
	Collection *CollectionHandler
	Analytics  *AnalyticsHandler
}

// NewHandler creates a new Handler with all subhandlers
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		User:       NewUserHandler(deps.Services.User, deps.Logger, deps.Config),
		Product:    NewProductHandler(deps.Services.Product, deps.Logger, deps.Config),
		Borrower:   NewBorrowerHandler(deps.Services.Borrower, deps.Logger, deps.Config),
		Property:   NewPropertyHandler(deps.Services.Property, deps.Logger, deps.Config),
		Loan:       NewLoanHandler(deps.Services.Loan, deps.Logger, deps.Config),
		Document:   NewDocumentHandler(deps.Services.Document, deps.Logger, deps.Config),
		Payment:    NewPaymentHandler(deps.Services.Payment, deps.Logger, deps.Config),
		Collection: NewCollectionHandler(deps.Services.Collection, deps.Logger, deps.Config),
		Analytics:  NewAnalyticsHandler(deps.Services.Analytics, deps.Logger, deps.Config),
	}
}

// respondWithServiceError maps service errors onto HTTP statuses
func respondWithServiceError(w http.ResponseWriter, logger *logrus.Logger, action string, err error) {
	logger.Warnf("Failed to %s: %v", action, err)

	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		utils.RespondWithValidationErrors(w, validationErr.Reasons)
	case errors.Is(err, models.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrNothingToExtend),
		errors.Is(err, models.ErrAlreadyExists):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidAmount):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		utils.RespondWithError(w, http.StatusUnauthorized, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// pathID parses a uuid route variable, writing a 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user id, writing a 500 when it is missing
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusInternalServerError, "user ID not found in context")
		return uuid.Nil, false
	}
	return userID, true
}

// decodeBody decodes a JSON request body. An empty body is accepted when optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) bool {
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}

	utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
	return false
}
