package middleware

import (
	"net/http"
	"time"

	"github.com/fpang/ai-doodle-enhancer/internal/metrics"
)

// knownEndpoints keeps the Endpoint dimension low-cardinality.
var knownEndpoints = map[string]bool{
	"/api/enhance": true,
	"/api/health":  true,
}

// Metrics publishes RequestLatencyMs and RequestCount per endpoint in EMF.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(sr, r)

		metrics.New(metrics.Namespace).
			Dimension("Endpoint", normalizeEndpoint(r.URL.Path)).
			Duration("RequestLatencyMs", time.Since(start)).
			Count("RequestCount").
			Property("method", r.Method).
			Property("statusCode", sr.statusCode).
			Property("requestId", RequestIDFromContext(r.Context())).
			Flush()
	})
}

func normalizeEndpoint(path string) string {
	if knownEndpoints[path] {
		return path
	}
	return "other"
}
