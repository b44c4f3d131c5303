// Package dataurl splits and builds RFC 2397 data URLs of the form
// data:<mime>;base64,<payload> as sent by the doodle canvas (toDataURL).
//
// Splitting is deliberately lenient: the payload is everything after the first
// comma and the prefix is not checked. A malformed prefix yields a malformed
// payload that the Gemini API rejects on its own.
package dataurl

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrNoPayload is returned when the string has no comma-delimited payload segment.
var ErrNoPayload = errors.New("data URL has no payload segment")

// DataURL is a parsed data URL.
type DataURL struct {
	// MIMEType is the media type from the prefix, lowercased ("" if absent).
	MIMEType string
	// Base64 reports whether the prefix carried the ;base64 flag.
	Base64 bool
	// Payload is everything after the first comma, unmodified.
	Payload string
}

// Payload returns the text after the first comma. ok is false when s has no comma.
func Payload(s string) (payload string, ok bool) {
	_, payload, ok = strings.Cut(s, ",")
	return payload, ok
}

// Parse splits s into its prefix fields and payload. Only the presence of the
// comma is enforced; "data:" and the parameters are read best-effort.
func Parse(s string) (DataURL, error) {
	prefix, payload, ok := strings.Cut(s, ",")
	if !ok {
		return DataURL{}, ErrNoPayload
	}

	d := DataURL{Payload: payload}
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "data:")
	params := strings.Split(prefix, ";")
	if mt := strings.ToLower(strings.TrimSpace(params[0])); strings.Contains(mt, "/") {
		d.MIMEType = mt
	}
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			d.Base64 = true
		}
	}
	return d, nil
}

// Encode builds a base64 data URL for raw bytes.
func Encode(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
