// Package main exposes the doodle enhancer as a Model Context Protocol tool
// over stdio, so assistants can ask for an art critique of an image.
//
// stdout carries the protocol; logs go to stderr and metrics are discarded.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-doodle-enhancer/internal/auth"
	"github.com/fpang/ai-doodle-enhancer/internal/config"
	"github.com/fpang/ai-doodle-enhancer/internal/enhance"
	"github.com/fpang/ai-doodle-enhancer/internal/logging"
	"github.com/fpang/ai-doodle-enhancer/internal/metrics"
)

func main() {
	initStart := time.Now()
	metrics.SetOutput(io.Discard)

	cfg, err := config.Load()
	if err != nil {
		logging.InitWith("info", "json", os.Stderr)
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.InitWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if key, err := auth.ResolveAPIKey(ctx, cfg.APIKey); err == nil {
		cfg.APIKey = key
	} else {
		log.Warn().Err(err).Msg("No Gemini API key, enhance_doodle calls will fail")
	}

	server := newServer(enhance.NewEnhancer(cfg, nil), cfg.MaxBodyBytes)

	logging.NewStartupLogger("enhance-mcp").
		CommitHash(commitHash).
		BuildTime(buildTime).
		Feature("apiKey", cfg.APIKeyConfigured()).
		Feature("autoMime", cfg.AutoMIME()).
		Config("model", cfg.Model).
		Config("imageMime", cfg.ImageMIME).
		InitDuration(time.Since(initStart)).
		Log()

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("MCP server stopped")
	}
}
