// Package middleware holds the HTTP wrappers shared by the Lambda and local
// server entry points: request IDs, access logging, EMF request metrics and
// the CloudFront origin check.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-doodle-enhancer/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

// maxInboundIDLen bounds caller-supplied IDs before they reach logs.
const maxInboundIDLen = 128

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestID reuses a caller-supplied X-Request-Id or generates a UUID, echoes it
// in the response and attaches it to the context along with a request-scoped logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxInboundIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		ctx = logging.WithLogger(ctx, log.With().Str("requestId", id).Logger())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the ID set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
