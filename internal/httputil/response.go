package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the envelope every error leaves the process in:
// a human-readable message plus an optional machine-oriented detail.
type ErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"error,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondError sends a JSON error response with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Message: message}, statusCode)
}

// RespondErrorDetail sends a JSON error response with an additional detail string.
func RespondErrorDetail(w http.ResponseWriter, message, detail string, statusCode int) {
	RespondJSON(w, ErrorResponse{Message: message, Detail: detail}, statusCode)
}
