package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/fpang/ai-doodle-enhancer/internal/config"
	"github.com/fpang/ai-doodle-enhancer/internal/enhance"
	"github.com/fpang/ai-doodle-enhancer/internal/middleware"
)

// newHandler is the Lambda route stack plus gzip for large critiques.
func newHandler(cfg *config.Config) http.Handler {
	return gzhttp.GzipHandler(middleware.Stack(enhance.Routes(cfg), cfg.OriginVerifySecret))
}

func newServer(cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newHandler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout(cfg.Timeout),
		IdleTimeout:       60 * time.Second,
	}
}

// responseHeadroom covers reading the body and writing the JSON answer
// around the Gemini call.
const responseHeadroom = 30 * time.Second

// writeTimeout keeps the server from cutting off a response while Gemini is
// still allowed to answer. An unbounded Gemini call means no write deadline.
func writeTimeout(geminiTimeout time.Duration) time.Duration {
	if geminiTimeout <= 0 {
		return 0
	}
	return geminiTimeout + responseHeadroom
}
