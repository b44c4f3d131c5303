package enhance

import (
	"net/http"

	"github.com/fpang/ai-doodle-enhancer/internal/config"
)

// Routes registers the enhancer endpoints:
//
//	/api/enhance  the doodle critique (any method; the handler enforces POST)
//	/api/health   liveness and key status
func Routes(cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/enhance", NewHandlerFromConfig(cfg))
	mux.HandleFunc("/api/health", Health(cfg))
	return mux
}
