package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/ai-doodle-enhancer/internal/metrics"
)

// ValidationError is a failed key probe, typed so callers can print a fix.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

// ValidationErrorType categorizes validation failures.
type ValidationErrorType int

const (
	// ErrTypeNoKey indicates no API key was found.
	ErrTypeNoKey ValidationErrorType = iota
	// ErrTypeInvalidKey indicates the API key is invalid or revoked.
	ErrTypeInvalidKey
	// ErrTypeNetworkError indicates a network connectivity issue or server outage.
	ErrTypeNetworkError
	// ErrTypeQuotaExceeded indicates the API quota has been exceeded.
	ErrTypeQuotaExceeded
	// ErrTypeUnknown indicates an unknown error occurred.
	ErrTypeUnknown
)

// String returns the metric label for t.
func (t ValidationErrorType) String() string {
	switch t {
	case ErrTypeNoKey:
		return "no_key"
	case ErrTypeInvalidKey:
		return "invalid"
	case ErrTypeNetworkError:
		return "network_error"
	case ErrTypeQuotaExceeded:
		return "quota"
	default:
		return "unknown"
	}
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateAPIKey checks apiKey by asking model for a one-word answer through
// the genai SDK. It returns nil for a working key, or a *ValidationError
// describing why the key cannot be used.
func ValidateAPIKey(ctx context.Context, apiKey, model string) error {
	if strings.TrimSpace(apiKey) == "" {
		recordValidation(ErrTypeNoKey.String(), 0)
		return &ValidationError{Type: ErrTypeNoKey, Message: "no API key configured"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return &ValidationError{Type: ErrTypeUnknown, Message: "failed to create Gemini client", Err: err}
	}

	log.Debug().Str("model", model).Msg("Validating API key with Gemini API")

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text("hi"), nil)
	elapsed := time.Since(start)

	if err != nil {
		valErr := classifyError(err)
		recordValidation(valErr.Type.String(), elapsed)
		return valErr
	}

	if resp == nil || len(resp.Candidates) == 0 {
		log.Warn().Msg("API key validation returned empty response")
		recordValidation("empty_response", elapsed)
		return &ValidationError{Type: ErrTypeUnknown, Message: "API returned empty response"}
	}

	recordValidation("success", elapsed)
	log.Info().Dur("duration", elapsed).Msg("API key validated successfully")
	return nil
}

func recordValidation(result string, elapsed time.Duration) {
	metrics.New(metrics.Namespace).
		Dimension("Result", result).
		Duration("ApiKeyValidationMs", elapsed).
		Count("ApiKeyValidationResult").
		Flush()
}

// messageRules classify errors that carry no HTTP status, by substring of
// the lower-cased message. The first matching rule wins.
var messageRules = []struct {
	typ     ValidationErrorType
	message string
	needles []string
}{
	{ErrTypeInvalidKey, "API key is invalid or has been revoked",
		[]string{"api key not valid", "invalid api key", "api_key_invalid", "permission denied"}},
	{ErrTypeQuotaExceeded, "API quota exceeded or rate limited",
		[]string{"quota", "resource exhausted", "rate limit"}},
	{ErrTypeNetworkError, "Network error - check your internet connection",
		[]string{"connection", "network", "timeout", "dial", "no such host", "unreachable"}},
}

// classifyError maps a probe failure to a ValidationError. SDK API errors are
// classified by status code, anything else by its message.
func classifyError(err error) *ValidationError {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classifyAPIError(*apiErrPtr)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ValidationError{Type: ErrTypeNetworkError, Message: "Network error - check your internet connection", Err: err}
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return &ValidationError{Type: rule.typ, Message: rule.message, Err: err}
			}
		}
	}
	return &ValidationError{Type: ErrTypeUnknown, Message: "Failed to validate API key", Err: err}
}

// classifyAPIError maps the status of a Gemini API error.
func classifyAPIError(err genai.APIError) *ValidationError {
	switch err.Code {
	case http.StatusBadRequest:
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "Bad request - API key may be malformed", Err: err}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "API key is invalid, expired, or lacks permissions", Err: err}
	case http.StatusTooManyRequests:
		return &ValidationError{Type: ErrTypeQuotaExceeded, Message: "API rate limit exceeded - try again later", Err: err}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &ValidationError{Type: ErrTypeNetworkError, Message: "Gemini API server error - try again later", Err: err}
	default:
		return &ValidationError{Type: ErrTypeUnknown, Message: fmt.Sprintf("Gemini API error %d: %s", err.Code, err.Message), Err: err}
	}
}
