package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// UserHandler handles staff user HTTP requests
type UserHandler struct {
	userService service.UserService
	logger      *logrus.Logger
	config      *configs.Config
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *logrus.Logger, config *configs.Config) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
		config:      config,
	}
}

// Register handles user registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var userReg models.UserRegistration
	if !decodeBody(w, r, &userReg, false) {
		return
	}

	userID, err := h.userService.Register(r.Context(), &userReg)
	if err != nil {
		respondWithServiceError(w, h.logger, "register user", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusCreated, "user registered successfully", map[string]interface{}{
		"user_id": userID,
	})
}

// Login handles user login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var loginReq models.UserLogin
	if !decodeBody(w, r, &loginReq, false) {
		return
	}

	tokenResponse, err := h.userService.Login(r.Context(), &loginReq)
	if err != nil {
		respondWithServiceError(w, h.logger, "login user", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "login successful", tokenResponse)
}

// GetUser returns the authenticated user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	// Get user ID from context (set by auth middleware)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, "get user details", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "user details retrieved successfully", user)
}
