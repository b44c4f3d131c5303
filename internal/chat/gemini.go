package chat

// gemini.go provides a REST API client for Gemini image critique.
// The request uses the snake_case generateContent wire format (inline_data,
// mime_type) and authenticates with the ?key= query parameter.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ClientConfig configures a GeminiClient.
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds the whole outbound call. Zero keeps the transport default.
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout (tests).
	HTTPClient *http.Client
}

// GeminiClient calls the Gemini generateContent REST endpoint with an image
// and a text prompt and returns the text answer.
// It holds no per-request state and is safe for concurrent use.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a new client, filling in the default model and base URL.
func NewGeminiClient(cfg ClientConfig) *GeminiClient {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModelName
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &GeminiClient{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// ModelName returns the model ID requests are sent to.
func (c *GeminiClient) ModelName() string {
	return c.model
}

// --- REST API request/response types ---

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inline_data,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64 encoded, passed through untouched
}

type geminiResponse struct {
	Candidates []*geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content *geminiResponseContent `json:"content"`
}

type geminiResponseContent struct {
	Parts []*geminiResponsePart `json:"parts"`
}

type geminiResponsePart struct {
	Text *string `json:"text"`
}

type geminiErrorResponse struct {
	Error *geminiError `json:"error"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// DescribeRequest is one image critique call.
type DescribeRequest struct {
	// Prompt is the instruction sent ahead of the image.
	Prompt string
	// MIMEType tags the inline image (e.g., "image/png").
	MIMEType string
	// Data is the base64 payload of the image. It is not decoded or validated here.
	Data string
}

// DescribeImage sends the prompt and inline image to Gemini and returns
// candidates[0].content.parts[0].text.
//
// A non-2xx status yields an *APIError; a 2xx body missing any level of that
// path yields ErrInvalidResponse. Transport and decode failures are wrapped.
func (c *GeminiClient) DescribeImage(ctx context.Context, in DescribeRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	startTime := time.Now()
	log.Debug().
		Str("model", c.model).
		Int("payload_bytes", len(in.Data)).
		Str("image_mime", in.MIMEType).
		Msg("Sending image to Gemini for critique")

	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: in.Prompt},
				{InlineData: &geminiBlobData{MIMEType: in.MIMEType, Data: in.Data}},
			},
		}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", redactKey(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, respBody)
		log.Debug().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Gemini API returned error")
		return "", apiErr
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	text, ok := firstText(geminiResp)
	if !ok {
		log.Debug().
			Str("body", truncateString(string(respBody), 500)).
			Msg("Gemini response missing candidates[0].content.parts[0].text")
		return "", ErrInvalidResponse
	}

	log.Debug().
		Str("model", c.model).
		Int("response_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini image critique complete")

	return text, nil
}

// newAPIError builds an APIError from a non-2xx response, preferring the
// error.message the API sent over a synthesized status message.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var errResp geminiErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		apiErr.Message = errResp.Error.Message
		apiErr.Status = errResp.Error.Status
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("API Error: %d", status)
	}
	return apiErr
}

// firstText walks candidates[0].content.parts[0].text, checking every level.
func firstText(resp geminiResponse) (string, bool) {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", false
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return "", false
	}
	if content.Parts[0].Text == nil {
		return "", false
	}
	return *content.Parts[0].Text, true
}

// redactKey masks the key query parameter in the URL of a transport error.
// net/http puts the full request URL into *url.Error, and these errors are logged.
func redactKey(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	redacted := "[redacted]"
	if u, perr := url.Parse(uerr.URL); perr == nil {
		q := u.Query()
		if q.Has("key") {
			q.Set("key", "REDACTED")
			u.RawQuery = q.Encode()
		}
		redacted = u.String()
	}
	return &url.Error{Op: uerr.Op, URL: redacted, Err: uerr.Err}
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
