package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"lending-service/internal/middleware"
)

// NewRouter registers every route of the API
func NewRouter(h *Handler, jwtSecret string, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.LogMiddleware(logger))

	// Public routes
	router.HandleFunc("/register", h.User.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", h.User.Login).Methods(http.MethodPost)

	// Protected routes with middleware
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(jwtSecret))

	api.HandleFunc("/me", h.User.GetUser).Methods(http.MethodGet)

	// Product endpoints
	api.HandleFunc("/products", h.Product.Create).Methods(http.MethodPost)
	api.HandleFunc("/products", h.Product.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.Product.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}/active", h.Product.SetActive).Methods(http.MethodPut)

	// Borrower endpoints
	api.HandleFunc("/borrowers", h.Borrower.Create).Methods(http.MethodPost)
	api.HandleFunc("/borrowers", h.Borrower.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/borrowers/{id}", h.Borrower.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/borrowers/{id}/verify", h.Borrower.Verify).Methods(http.MethodPost)
	api.HandleFunc("/borrowers/{id}/properties", h.Borrower.Properties).Methods(http.MethodGet)

	// Property endpoints
	api.HandleFunc("/properties", h.Property.Create).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id}", h.Property.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}/verify", h.Property.Verify).Methods(http.MethodPost)

	// Loan endpoints
	api.HandleFunc("/loans", h.Loan.Create).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.Loan.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", h.Loan.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/submit", h.Loan.Submit).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/return", h.Loan.Return).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/approve", h.Loan.Approve).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/activate", h.Loan.Activate).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/transition", h.Loan.Transition).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/schedule", h.Loan.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/schedule.xml", h.Loan.ExportSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/schedule/regenerate", h.Loan.RegenerateSchedule).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/summary", h.Loan.Summary).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/checklist", h.Loan.Checklist).Methods(http.MethodGet)

	// Document endpoints
	api.HandleFunc("/loans/{id}/documents", h.Document.Create).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/documents", h.Document.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/status", h.Document.UpdateStatus).Methods(http.MethodPut)

	// Payment endpoints
	api.HandleFunc("/loans/{id}/payments", h.Payment.Record).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/payments", h.Payment.GetAll).Methods(http.MethodGet)

	// Collection endpoints
	api.HandleFunc("/collections/delinquent", h.Collection.Delinquent).Methods(http.MethodGet)
	api.HandleFunc("/collections/sweep", h.Collection.RunSweep).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/collections", h.Collection.History).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/collections", h.Collection.LogAction).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/extension", h.Collection.GrantExtension).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/escalate", h.Collection.Escalate).Methods(http.MethodPost)

	// Analytics endpoints
	api.HandleFunc("/dashboard", h.Analytics.Dashboard).Methods(http.MethodGet)

	return router
}
