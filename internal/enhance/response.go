package enhance

import (
	"encoding/json"
	"net/http"
)

// Request is the inbound JSON body.
type Request struct {
	ImageData string `json:"imageData"`
}

// Result is the outcome of a processed enhancement. EnhancedDescription is set
// only on success, Error only on failure.
type Result struct {
	Success             bool    `json:"success"`
	EnhancedDescription *string `json:"enhancedDescription,omitempty"`
	Error               string  `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// httpError sends a bare {"error": msg} body.
func httpError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
