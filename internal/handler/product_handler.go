package handler

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// ProductHandler handles loan product HTTP requests
type ProductHandler struct {
	productService service.ProductService
	logger         *logrus.Logger
	config         *configs.Config
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *logrus.Logger, config *configs.Config) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
		config:         config,
	}
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Parse request body
	var product models.LoanProduct
	if !decodeBody(w, r, &product, false) {
		return
	}

	if err := h.productService.Create(r.Context(), &product); err != nil {
		respondWithServiceError(w, h.logger, "create product", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusCreated, "product created successfully", product)
}

// GetAll lists products. ?active=true limits the list to products open for new loans.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if raw := r.URL.Query().Get("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid active filter")
			return
		}
		activeOnly = parsed
	}

	products, err := h.productService.List(r.Context(), activeOnly)
	if err != nil {
		respondWithServiceError(w, h.logger, "list products", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "products retrieved successfully", products)
}

// GetByID returns a single product
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	// Get product ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "get product", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "product retrieved successfully", product)
}

// SetActive opens or closes a product for new applications
func (h *ProductHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	// Get product ID from URL parameters
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}

	// Parse request body
	if !decodeBody(w, r, &req, false) {
		return
	}

	if err := h.productService.SetActive(r.Context(), id, req.IsActive); err != nil {
		respondWithServiceError(w, h.logger, "update product", err)
		return
	}

	// Return success response
	utils.RespondWithSuccess(w, http.StatusOK, "product updated successfully", nil)
}
