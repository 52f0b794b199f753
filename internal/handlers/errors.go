package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/validation"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WriteError writes an error response
func WriteError(w http.ResponseWriter, statusCode int, err error, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: err.Error(),
	}

	if details != nil {
		response.Details = details
	}

	if validationErr, ok := err.(*validation.Error); ok {
		response.Code = "VALIDATION_ERROR"
		response.Details = map[string]interface{}{
			"field":   validationErr.Field,
			"message": validationErr.Message,
		}
	}

	json.NewEncoder(w).Encode(response)
}

// WriteSuccess writes a success response
func WriteSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
