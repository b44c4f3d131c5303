package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// newTestClient points a GeminiClient at a fake Gemini server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient(ClientConfig{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL,
	})
}

func TestNewGeminiClient_Defaults(t *testing.T) {
	c := NewGeminiClient(ClientConfig{APIKey: "k"})
	if c.ModelName() != DefaultModelName {
		t.Errorf("expected model %q, got %q", DefaultModelName, c.ModelName())
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultBaseURL, c.baseURL)
	}
}

func TestDescribeImage_RequestShape(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})

	_, err := c.DescribeImage(context.Background(), DescribeRequest{
		Prompt:   "critique this",
		MIMEType: "image/png",
		Data:     "iVBORw0KGgo=",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/models/gemini-test:generateContent" {
		t.Errorf("expected path /models/gemini-test:generateContent, got %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected key query param test-key, got %q", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected application/json content type, got %q", gotContentType)
	}

	contents := gotBody["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	parts := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if text := parts[0].(map[string]any)["text"]; text != "critique this" {
		t.Errorf("expected prompt text first, got %v", text)
	}
	inline, ok := parts[1].(map[string]any)["inline_data"].(map[string]any)
	if !ok {
		t.Fatalf("expected inline_data part, got %v", parts[1])
	}
	if inline["mime_type"] != "image/png" {
		t.Errorf("expected mime_type image/png, got %v", inline["mime_type"])
	}
	if inline["data"] != "iVBORw0KGgo=" {
		t.Errorf("expected payload passed through, got %v", inline["data"])
	}
}

func TestDescribeImage_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A cat with a hat."}]}}]}`))
	})

	text, err := c.DescribeImage(context.Background(), DescribeRequest{Prompt: "p", MIMEType: "image/png", Data: "AA=="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "A cat with a hat." {
		t.Errorf("expected text %q, got %q", "A cat with a hat.", text)
	}
}

func TestDescribeImage_APIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "message from body",
			status:      http.StatusTooManyRequests,
			body:        `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`,
			wantMessage: "quota exceeded",
		},
		{
			name:        "error without message",
			status:      http.StatusBadRequest,
			body:        `{"error":{"code":400}}`,
			wantMessage: "API Error: 400",
		},
		{
			name:        "non-JSON body",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "API Error: 502",
		},
		{
			name:        "empty body",
			status:      http.StatusServiceUnavailable,
			body:        ``,
			wantMessage: "API Error: 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.DescribeImage(context.Background(), DescribeRequest{Prompt: "p", MIMEType: "image/png", Data: "AA=="})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T (%v)", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Error() != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, apiErr.Error())
			}
		})
	}
}

func TestDescribeImage_InvalidShapes(t *testing.T) {
	bodies := map[string]string{
		"no candidates":     `{}`,
		"empty candidates":  `{"candidates":[]}`,
		"null candidate":    `{"candidates":[null]}`,
		"no content":        `{"candidates":[{"finishReason":"SAFETY"}]}`,
		"no parts":          `{"candidates":[{"content":{}}]}`,
		"empty parts":       `{"candidates":[{"content":{"parts":[]}}]}`,
		"part without text": `{"candidates":[{"content":{"parts":[{"inline_data":{}}]}}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			_, err := c.DescribeImage(context.Background(), DescribeRequest{Prompt: "p", MIMEType: "image/png", Data: "AA=="})
			if !errors.Is(err, ErrInvalidResponse) {
				t.Errorf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestDescribeImage_EmptyTextIsValid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":""}]}}]}`))
	})

	text, err := c.DescribeImage(context.Background(), DescribeRequest{Prompt: "p", MIMEType: "image/png", Data: "AA=="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestDescribeImage_MalformedSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":`))
	})

	_, err := c.DescribeImage(context.Background(), DescribeRequest{Prompt: "p", MIMEType: "image/png", Data: "AA=="})
	if err == nil {
		t.Fatal("expected error for malformed body")
	}
	if !strings.Contains(err.Error(), "failed to parse response") {
		t.Errorf("expected parse error, got %v", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("malformed success body should not be an APIError")
	}
}

func TestDescribeImage_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()
	c := NewGeminiClient(ClientConfig{APIKey: "super-secret-key", Model: "gemini-test", BaseURL: baseURL})

	_, err := c.DescribeImage(context.Background(), DescribeRequest{Prompt: "p", MIMEType: "image/png", Data: "AA=="})
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if strings.Contains(err.Error(), "super-secret-key") {
		t.Errorf("error leaked the API key: %v", err)
	}
	if !strings.Contains(err.Error(), "key=REDACTED") {
		t.Errorf("expected masked key in error, got %v", err)
	}
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		t.Errorf("expected *url.Error to stay in the chain, got %T", err)
	}
}

func TestRedactKey_Cancellation(t *testing.T) {
	err := redactKey(&url.Error{Op: "Post", URL: "https://example.test/m:generateContent?key=abc", Err: context.Canceled})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled to survive, got %v", err)
	}
	if strings.Contains(err.Error(), "abc") {
		t.Errorf("expected key masked, got %v", err)
	}
	plain := errors.New("boom")
	if redactKey(plain) != plain {
		t.Error("expected non-URL errors unchanged")
	}
}

func TestDescribeImage_MissingAPIKey(t *testing.T) {
	c := NewGeminiClient(ClientConfig{})
	_, err := c.DescribeImage(context.Background(), DescribeRequest{Prompt: "p", MIMEType: "image/png", Data: "AA=="})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := truncateString("abcdefghij", 4); got != "abcd..." {
		t.Errorf("expected abcd..., got %q", got)
	}
}
