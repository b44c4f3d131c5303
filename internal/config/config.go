// Package config loads the enhancer's runtime configuration from the
// environment, optionally seeded from .env files for local runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/fpang/ai-doodle-enhancer/internal/assets"
	"github.com/fpang/ai-doodle-enhancer/internal/chat"
)

// MIMEAuto makes the enhancer sniff each image instead of using a fixed type.
const MIMEAuto = "auto"

const (
	DefaultImageMIME      = "image/png"
	DefaultMaxBodyBytes   = 10 << 20
	DefaultPort           = 8080
	DefaultSSMAPIKeyParam = "/ai-doodle-enhancer/prod/gemini-api-key"
)

// Config is the deployment configuration shared by every entry point.
// It is resolved once at start-up and then only read.
type Config struct {
	// APIKey authenticates Gemini calls. When empty every request answers 500.
	APIKey  string        `env:"GEMINI_API_KEY"`
	Model   string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	BaseURL string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT"` // 0 keeps the transport default

	Prompt     string `env:"ENHANCE_PROMPT"`      // inline prompt override
	PromptFile string `env:"ENHANCE_PROMPT_FILE"` // wins over ENHANCE_PROMPT
	ImageMIME  string `env:"ENHANCE_IMAGE_MIME" envDefault:"image/png"`

	MaxBodyBytes       int64  `env:"ENHANCE_MAX_BODY_BYTES" envDefault:"10485760"`
	OriginVerifySecret string `env:"ORIGIN_VERIFY_SECRET"`
	Port               int    `env:"PORT" envDefault:"8080"`
	SSMAPIKeyParam     string `env:"SSM_API_KEY_PARAM" envDefault:"/ai-doodle-enhancer/prod/gemini-api-key"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads .env files (the named ones, or ./.env when none are given) and
// then the process environment. Variables already set in the environment are
// never overridden by a file. A named file that cannot be read is an error;
// a missing default ./.env is not.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses the process environment only. Lambda entry points use this.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize trims values, fills defaults for variables set to an empty
// string, resolves the prompt and validates the rest.
func (c *Config) normalize() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = chat.DefaultModelName
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = chat.DefaultBaseURL
	}
	if c.Timeout < 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must not be negative, got %s", c.Timeout)
	}

	c.ImageMIME = strings.ToLower(strings.TrimSpace(c.ImageMIME))
	switch {
	case c.ImageMIME == "":
		c.ImageMIME = DefaultImageMIME
	case c.ImageMIME != MIMEAuto && !strings.Contains(c.ImageMIME, "/"):
		return fmt.Errorf("ENHANCE_IMAGE_MIME must be a MIME type or %q, got %q", MIMEAuto, c.ImageMIME)
	}

	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if strings.TrimSpace(c.SSMAPIKeyParam) == "" {
		c.SSMAPIKeyParam = DefaultSSMAPIKeyParam
	}

	prompt, err := c.resolvePrompt()
	if err != nil {
		return err
	}
	c.Prompt = prompt
	return nil
}

// resolvePrompt picks the prompt file, then the inline prompt, then the
// embedded art-critic prompt.
func (c *Config) resolvePrompt() (string, error) {
	if c.PromptFile != "" {
		data, err := os.ReadFile(c.PromptFile)
		if err != nil {
			return "", fmt.Errorf("failed to read ENHANCE_PROMPT_FILE: %w", err)
		}
		if p := strings.TrimSpace(string(data)); p != "" {
			return p, nil
		}
		return "", fmt.Errorf("ENHANCE_PROMPT_FILE %s is empty", c.PromptFile)
	}
	if p := strings.TrimSpace(c.Prompt); p != "" {
		return p, nil
	}
	return assets.DefaultPrompt(), nil
}

// AutoMIME reports whether image types are sniffed per request.
func (c *Config) AutoMIME() bool {
	return c.ImageMIME == MIMEAuto
}

// APIKeyConfigured reports whether a Gemini API key is present.
func (c *Config) APIKeyConfigured() bool {
	return c.APIKey != ""
}

// ClientConfig returns the Gemini client settings derived from c.
func (c *Config) ClientConfig() chat.ClientConfig {
	return chat.ClientConfig{
		APIKey:  c.APIKey,
		Model:   c.Model,
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
	}
}
