package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

// SuccessResponse is the body of every successful request
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithJSON writes payload as JSON with the given status code
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes an error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithValidationErrors writes a 422 carrying every failed check
func RespondWithValidationErrors(w http.ResponseWriter, reasons []string) {
	RespondWithJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:  "validation failed",
		Errors: reasons,
	})
}

// RespondWithSuccess writes a success response
func RespondWithSuccess(w http.ResponseWriter, code int, message string, data interface{}) {
	RespondWithJSON(w, code, SuccessResponse{Message: message, Data: data})
}
