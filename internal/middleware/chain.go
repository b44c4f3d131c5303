package middleware

import "net/http"

// Chain wraps h so that the first middleware listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Stack is the standard wrapping for the enhancer routes:
// RequestID → Logging → Metrics → OriginVerify → h.
func Stack(h http.Handler, originSecret string) http.Handler {
	return Chain(h, RequestID, Logging, Metrics, OriginVerify(originSecret))
}
