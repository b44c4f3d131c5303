// Package main runs the doodle enhancer API as a local HTTP server, serving
// the same routes as the Lambda for frontend development.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/ai-doodle-enhancer/internal/auth"
	"github.com/fpang/ai-doodle-enhancer/internal/cli"
	"github.com/fpang/ai-doodle-enhancer/internal/config"
	"github.com/fpang/ai-doodle-enhancer/internal/logging"
	"github.com/fpang/ai-doodle-enhancer/internal/metrics"
)

// CLI flags
var (
	portFlag        int
	envFilesFlag    []string
	validateKeyFlag bool
	metricsFlag     bool
)

var rootCmd = &cobra.Command{
	Use:   "enhance-server",
	Short: "Local server for the AI doodle enhancer API",
	Long: `Enhance Server serves POST /api/enhance and GET /api/health on localhost
with the same contract as the deployed Lambda.

Configuration comes from the environment (GEMINI_API_KEY, GEMINI_MODEL,
ENHANCE_IMAGE_MIME, ...), optionally seeded from .env files.

Examples:
  enhance-server
  enhance-server --port 9090 --env-file .env.local
  enhance-server --validate-key`,
	RunE: runMain,
}

func init() {
	rootCmd.Flags().IntVarP(&portFlag, "port", "p", config.DefaultPort, "Port to listen on (overrides PORT)")
	rootCmd.Flags().StringSliceVar(&envFilesFlag, "env-file", nil, "Env file(s) to load before reading the environment (default .env)")
	rootCmd.Flags().BoolVar(&validateKeyFlag, "validate-key", false, "Probe the Gemini API key at start-up and exit on failure")
	rootCmd.Flags().BoolVar(&metricsFlag, "metrics", false, "Print CloudWatch EMF metric lines to stdout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) error {
	initStart := time.Now()

	cfg, err := config.Load(envFilesFlag...)
	if err != nil {
		return err
	}
	logging.InitWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if !metricsFlag {
		metrics.SetOutput(io.Discard)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = portFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if key, err := auth.ResolveAPIKey(ctx, cfg.APIKey); err == nil {
		cfg.APIKey = key
	} else {
		log.Warn().Err(err).Msg("No Gemini API key, /api/enhance will answer 500")
	}

	if validateKeyFlag {
		if err := auth.ValidateAPIKey(ctx, cfg.APIKey, cfg.Model); err != nil {
			log.Error().Err(err).Msg(cli.ValidationHint(err))
			return err
		}
	}

	srv := newServer(cfg)

	logging.NewStartupLogger("enhance-server").
		CommitHash(commitHash).
		BuildTime(buildTime).
		Feature("apiKey", cfg.APIKeyConfigured()).
		Feature("originVerify", cfg.OriginVerifySecret != "").
		Feature("autoMime", cfg.AutoMIME()).
		Feature("metrics", metricsFlag).
		Config("model", cfg.Model).
		Config("imageMime", cfg.ImageMIME).
		Config("port", strconv.Itoa(cfg.Port)).
		InitDuration(time.Since(initStart)).
		Log()

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Int("port", cfg.Port).Msg("Starting enhance server")
	fmt.Printf("\n  Doodle enhancer API: http://localhost:%d/api/enhance\n\n", cfg.Port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
