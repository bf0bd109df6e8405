package common

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// InternalErrorMessage is returned to clients for any unexpected failure
const InternalErrorMessage = "Internal server error"

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// MessageResponse is the body of replies that only carry a message
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSONResponse writes a JSON response with the given data
func WriteJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// WriteErrorResponse writes a standardized error response
func WriteErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	WriteJSONResponse(w, ErrorResponse{Error: message}, statusCode)
}

// WriteErrorWithDetails writes an error response carrying structured details
func WriteErrorWithDetails(w http.ResponseWriter, message string, details any, statusCode int) {
	WriteJSONResponse(w, ErrorResponse{Error: message, Details: details}, statusCode)
}

// WriteInternalError logs err and replies with a generic 500
func WriteInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.ErrorContext(r.Context(), msg, "error", err, "method", r.Method, "path", r.URL.Path)
	WriteErrorResponse(w, InternalErrorMessage, http.StatusInternalServerError)
}
