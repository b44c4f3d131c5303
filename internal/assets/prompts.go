// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at compile time.
package assets

import (
	_ "embed"
	"strings"
)

// ArtCriticPrompt instructs Gemini to critique a hand-drawn sketch and suggest
// how it could be refined. It is sent ahead of the image on every enhancement
// unless a deployment overrides it.
//
//go:embed prompts/art-critic.txt
var ArtCriticPrompt string

// DefaultPrompt returns the embedded art-critic prompt without surrounding whitespace.
func DefaultPrompt() string {
	return strings.TrimSpace(ArtCriticPrompt)
}
