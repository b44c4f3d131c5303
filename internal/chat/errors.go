package chat

import "errors"

// ErrInvalidResponse is returned when a successful response lacks
// candidates[0].content.parts[0].text. Its text is shown to callers verbatim.
var ErrInvalidResponse = errors.New("Invalid response format from Gemini API")

// ErrMissingAPIKey is returned when the client was built without an API key.
var ErrMissingAPIKey = errors.New("API key not configured")

// APIError is a non-2xx answer from the Gemini API.
type APIError struct {
	// StatusCode is the HTTP status the API answered with.
	StatusCode int
	// Message is error.message from the body, or "API Error: <status>" when absent.
	Message string
	// Status is the error.status enum (e.g., "RESOURCE_EXHAUSTED"), if sent.
	Status string
}

func (e *APIError) Error() string {
	return e.Message
}
