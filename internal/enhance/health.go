package enhance

import (
	"net/http"

	"github.com/fpang/ai-doodle-enhancer/internal/config"
)

// ServiceName identifies this service in health responses.
const ServiceName = "ai-doodle-enhancer"

type healthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	APIKeyConfigured bool   `json:"apiKeyConfigured"`
}

// Health reports liveness and whether a Gemini key is configured.
func Health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, healthResponse{
			Status:           "ok",
			Service:          ServiceName,
			APIKeyConfigured: cfg.APIKeyConfigured(),
		})
	}
}
