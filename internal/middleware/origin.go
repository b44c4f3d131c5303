package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/fpang/ai-doodle-enhancer/internal/logging"
)

// OriginVerifyHeader is the header CloudFront injects on origin requests.
const OriginVerifyHeader = "x-origin-verify"

// OriginVerify rejects requests that did not come through CloudFront. An empty
// secret disables the check (local runs and first deploys). OPTIONS requests
// always pass.
func OriginVerify(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflights carry no custom headers; the handler answers them
			// with CORS headers and nothing else.
			if secret == "" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get(OriginVerifyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				logging.FromContext(r.Context()).Warn().
					Str("path", r.URL.Path).
					Msg("Blocked request: missing or invalid x-origin-verify header")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{"error": "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
