package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fpang/ai-doodle-enhancer/internal/auth"
	"github.com/fpang/ai-doodle-enhancer/internal/dataurl"
)

// ReadImageDataURL reads the image at path and returns it as a base64 data
// URL. Files larger than maxBytes are rejected; zero or less disables the cap.
func ReadImageDataURL(path string, maxBytes int64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("image not found: %s", path)
		}
		return "", fmt.Errorf("failed to access image: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory: %s", path)
	}
	// base64 grows the payload by a third.
	if maxBytes > 0 && info.Size()*4/3 > maxBytes {
		return "", fmt.Errorf("image %s is too large (%d bytes)", filepath.Base(path), info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return dataurl.Encode(mimeTypeFor(path, data), data), nil
}

// mimeTypeFor prefers the decoded image format and falls back to the extension.
func mimeTypeFor(path string, data []byte) string {
	if info, ok := dataurl.SniffBytes(data); ok {
		return info.MIMEType
	}
	if mt, ok := dataurl.MIMETypeForExt(filepath.Ext(path)); ok {
		return mt
	}
	return dataurl.DefaultMIMEType
}

// ValidationHint turns an auth.ValidationError into a one-line fix for the user.
func ValidationHint(err error) string {
	var validationErr *auth.ValidationError
	if !errors.As(err, &validationErr) {
		return "API key validation failed"
	}
	switch validationErr.Type {
	case auth.ErrTypeNoKey:
		return "No API key configured. Set GEMINI_API_KEY or store it in ~/.ai-doodle-enhancer/credentials.gpg"
	case auth.ErrTypeInvalidKey:
		return "Invalid API key. Please check your API key and try again"
	case auth.ErrTypeNetworkError:
		return "Network error. Please check your internet connection"
	case auth.ErrTypeQuotaExceeded:
		return "API quota exceeded. Please try again later or check your usage limits"
	default:
		return "API key validation failed"
	}
}
