package main

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fpang/ai-doodle-enhancer/internal/config"
	"github.com/fpang/ai-doodle-enhancer/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIKey:       "key",
		Model:        "gemini-test",
		BaseURL:      baseURL,
		Prompt:       "critique",
		ImageMIME:    config.DefaultImageMIME,
		MaxBodyBytes: config.DefaultMaxBodyBytes,
		Port:         8181,
	}
}

func TestNewServer(t *testing.T) {
	srv := newServer(testConfig("http://127.0.0.1:0"))
	if srv.Addr != ":8181" {
		t.Errorf("expected :8181, got %s", srv.Addr)
	}
}

func TestNewServer_WriteTimeoutFollowsGemini(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	if srv := newServer(cfg); srv.WriteTimeout != 0 {
		t.Errorf("expected no write deadline for unbounded Gemini calls, got %s", srv.WriteTimeout)
	}

	cfg.Timeout = 3 * time.Minute
	srv := newServer(cfg)
	if srv.WriteTimeout <= cfg.Timeout {
		t.Errorf("expected write timeout above %s, got %s", cfg.Timeout, srv.WriteTimeout)
	}
	if srv.WriteTimeout != 3*time.Minute+responseHeadroom {
		t.Errorf("expected %s, got %s", 3*time.Minute+responseHeadroom, srv.WriteTimeout)
	}
}

func TestHandler_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(testConfig("http://127.0.0.1:0")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected request ID header")
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["apiKeyConfigured"] != true {
		t.Errorf("expected apiKeyConfigured=true, got %v", body["apiKeyConfigured"])
	}
}

func TestHandler_PreflightWithOriginSecret(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.OriginVerifySecret = "s3cret"
	h := newHandler(cfg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/enhance", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS headers on preflight")
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected allowed methods on preflight")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/enhance", strings.NewReader(`{}`)))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for POST without origin header, got %d", rec.Code)
	}
}

func TestHandler_GzipsLargeCritique(t *testing.T) {
	critique := strings.Repeat("Add cross-hatching to the shadows. ", 200)
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": critique}}},
			}},
		})
	}))
	defer gemini.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/enhance", strings.NewReader(`{"imageData":"data:image/png;base64,AAAA"}`))
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	newHandler(testConfig(gemini.URL)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", rec.Header().Get("Content-Encoding"))
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS headers to survive compression")
	}

	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("invalid gzip body: %v", err)
	}
	var result struct {
		Success             bool   `json:"success"`
		EnhancedDescription string `json:"enhancedDescription"`
	}
	if err := json.NewDecoder(zr).Decode(&result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !result.Success || result.EnhancedDescription != critique {
		t.Errorf("unexpected result success=%v len=%d", result.Success, len(result.EnhancedDescription))
	}
}
