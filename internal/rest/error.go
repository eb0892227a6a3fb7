package rest

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteError writes an ErrorResponse with the given status. cause, when not nil,
// becomes the details.
func WriteError(w http.ResponseWriter, status int, message string, cause error) {
	body := ErrorResponse{Error: message}
	if cause != nil {
		body.Details = cause.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}
