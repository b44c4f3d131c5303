package enhance

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fpang/ai-doodle-enhancer/internal/config"
	"github.com/fpang/ai-doodle-enhancer/internal/logging"
)

// CORS headers set on every response.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Credentials": "true",
	"Access-Control-Allow-Origin":      "*",
	"Access-Control-Allow-Methods":     "GET,OPTIONS,PATCH,DELETE,POST,PUT",
	"Access-Control-Allow-Headers":     "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version",
}

// Handler serves POST /api/enhance.
type Handler struct {
	enhancer     *Enhancer
	maxBodyBytes int64
}

// NewHandler wraps e with the HTTP contract. Bodies larger than maxBodyBytes
// are rejected with 413; zero or less disables the cap.
func NewHandler(e *Enhancer, maxBodyBytes int64) *Handler {
	return &Handler{enhancer: e, maxBodyBytes: maxBodyBytes}
}

// NewHandlerFromConfig builds the Gemini-backed handler described by cfg.
func NewHandlerFromConfig(cfg *config.Config) *Handler {
	return NewHandler(NewEnhancer(cfg, nil), cfg.MaxBodyBytes)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
		return
	}

	req, reqErr := h.decode(w, r)
	if reqErr != nil {
		httpError(w, reqErr.StatusCode, reqErr.Message)
		return
	}

	text, err := h.enhancer.Enhance(r.Context(), req.ImageData)
	if err != nil {
		var re *RequestError
		if errors.As(err, &re) {
			httpError(w, re.StatusCode, re.Message)
			return
		}
		logging.FromContext(r.Context()).Error().Err(err).Msg("Enhancement error")
		respondJSON(w, http.StatusInternalServerError, Result{Success: false, Error: ErrorMessage(err)})
		return
	}

	respondJSON(w, http.StatusOK, Result{Success: true, EnhancedDescription: &text})
}

// decode reads the JSON body. An empty body decodes to an empty Request so
// that it fails validation like a body without imageData.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Request, *RequestError) {
	var req Request
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, &RequestError{StatusCode: http.StatusRequestEntityTooLarge, Message: MsgBodyTooLarge}
		}
		return req, &RequestError{StatusCode: http.StatusBadRequest, Message: MsgInvalidJSON}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, nil
	}
	var body struct {
		ImageData json.RawMessage `json:"imageData"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return req, &RequestError{StatusCode: http.StatusBadRequest, Message: MsgInvalidJSON}
	}
	imageData, reqErr := imageDataValue(body.ImageData)
	if reqErr != nil {
		return req, reqErr
	}
	req.ImageData = imageData
	return req, nil
}

// imageDataValue reads the imageData field. JSON falsy values (null, false,
// 0, "") count as absent; any other non-string cannot be a data URL.
func imageDataValue(raw json.RawMessage) (string, *RequestError) {
	if len(raw) == 0 {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", &RequestError{StatusCode: http.StatusBadRequest, Message: MsgInvalidJSON}
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		if !x {
			return "", nil
		}
	case float64:
		if x == 0 {
			return "", nil
		}
	}
	return "", &RequestError{StatusCode: http.StatusBadRequest, Message: MsgInvalidImageFormat}
}
