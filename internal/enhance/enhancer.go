// Package enhance turns a doodle, sent as a base64 data URL, into an art
// critique from Gemini. Enhancer holds the transport-independent flow; Handler
// exposes it over HTTP with the browser-facing JSON contract.
package enhance

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fpang/ai-doodle-enhancer/internal/chat"
	"github.com/fpang/ai-doodle-enhancer/internal/config"
	"github.com/fpang/ai-doodle-enhancer/internal/dataurl"
	"github.com/fpang/ai-doodle-enhancer/internal/logging"
	"github.com/fpang/ai-doodle-enhancer/internal/metrics"
)

// Client-facing messages.
const (
	MsgMethodNotAllowed    = "Method not allowed"
	MsgImageDataRequired   = "Image data is required"
	MsgInvalidImageFormat  = "Invalid image data format"
	MsgAPIKeyNotConfigured = "API key not configured"
	MsgInvalidJSON         = "Invalid JSON body"
	MsgBodyTooLarge        = "Request body too large"
	MsgProcessingFailed    = "Failed to process with Gemini AI"
)

// Describer sends one image with a prompt to a vision model and returns its text.
// *chat.GeminiClient satisfies it.
type Describer interface {
	DescribeImage(ctx context.Context, in chat.DescribeRequest) (string, error)
}

// RequestError is a failure detected before any downstream call: bad input or
// missing configuration. Its Message is returned to the caller as-is.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Enhancer validates an image data URL and asks Gemini to critique it.
// It is safe for concurrent use.
type Enhancer struct {
	cfg    *config.Config
	client Describer
}

// NewEnhancer builds an Enhancer from cfg. When client is nil a Gemini REST
// client is created from cfg.
func NewEnhancer(cfg *config.Config, client Describer) *Enhancer {
	if client == nil {
		client = chat.NewGeminiClient(cfg.ClientConfig())
	}
	return &Enhancer{cfg: cfg, client: client}
}

// Enhance returns Gemini's critique of the image in imageData.
//
// Input and configuration problems come back as *RequestError. Downstream
// failures are returned unchanged; use ErrorMessage to turn them into the
// text a caller may see.
func (e *Enhancer) Enhance(ctx context.Context, imageData string) (string, error) {
	if imageData == "" {
		return "", &RequestError{StatusCode: http.StatusBadRequest, Message: MsgImageDataRequired}
	}
	d, err := dataurl.Parse(imageData)
	if err != nil {
		return "", &RequestError{StatusCode: http.StatusBadRequest, Message: MsgInvalidImageFormat}
	}
	if !e.cfg.APIKeyConfigured() {
		return "", &RequestError{StatusCode: http.StatusInternalServerError, Message: MsgAPIKeyNotConfigured}
	}

	mimeType := e.cfg.ImageMIME
	if e.cfg.AutoMIME() {
		mimeType = dataurl.DetectMIME(d, config.DefaultImageMIME)
	}

	logging.FromContext(ctx).Debug().
		Str("declaredMime", d.MIMEType).
		Str("imageMime", mimeType).
		Int("payloadBytes", len(d.Payload)).
		Msg("Enhancing doodle")

	start := time.Now()
	text, err := e.client.DescribeImage(ctx, chat.DescribeRequest{
		Prompt:   e.cfg.Prompt,
		MIMEType: mimeType,
		Data:     d.Payload,
	})
	metrics.New(metrics.Namespace).
		Dimension("Model", e.cfg.Model).
		Dimension("Result", resultLabel(err)).
		Duration("GeminiCallMs", time.Since(start)).
		Bytes("PayloadBytes", len(d.Payload)).
		Count("EnhanceResult").
		Property("imageMime", mimeType).
		Flush()
	if err != nil {
		return "", err
	}
	return text, nil
}

// ErrorMessage maps a downstream failure to the message shown to callers.
// API errors and malformed responses carry their own text; anything else
// (transport, decoding) gets the generic fallback so request URLs never leak.
func ErrorMessage(err error) string {
	var apiErr *chat.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, chat.ErrInvalidResponse):
		return chat.ErrInvalidResponse.Error()
	default:
		return MsgProcessingFailed
	}
}

// resultLabel is the low-cardinality Result dimension for a Gemini call.
func resultLabel(err error) string {
	var apiErr *chat.APIError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.Is(err, chat.ErrInvalidResponse):
		return "invalid_response"
	default:
		return "failed"
	}
}
