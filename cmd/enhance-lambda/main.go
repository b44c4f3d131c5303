// Package main is the Lambda entry point for the doodle enhancer API.
//
// API Gateway (HTTP API, payload v2) forwards /api/enhance and /api/health
// through httpadapter to the same http.Handler the local server uses.
// The Gemini key comes from GEMINI_API_KEY or, failing that, from SSM
// Parameter Store at cold start.
package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-doodle-enhancer/internal/config"
	"github.com/fpang/ai-doodle-enhancer/internal/enhance"
	"github.com/fpang/ai-doodle-enhancer/internal/lambdaboot"
	"github.com/fpang/ai-doodle-enhancer/internal/logging"
	"github.com/fpang/ai-doodle-enhancer/internal/middleware"
)

var handler http.Handler

func init() {
	initStart := time.Now()
	logging.Init()
	ctx := context.Background()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if !cfg.APIKeyConfigured() {
		aws := lambdaboot.InitAWS(ctx)
		lambdaboot.LoadGeminiKey(ctx, aws.SSM, cfg)
	}

	handler = middleware.Stack(enhance.Routes(cfg), cfg.OriginVerifySecret)

	lambdaboot.StartupLog("enhance-lambda", initStart).
		CommitHash(commitHash).
		BuildTime(buildTime).
		SSMParam("geminiApiKey", cfg.SSMAPIKeyParam).
		Feature("apiKey", cfg.APIKeyConfigured()).
		Feature("originVerify", cfg.OriginVerifySecret != "").
		Feature("autoMime", cfg.AutoMIME()).
		Config("model", cfg.Model).
		Config("imageMime", cfg.ImageMIME).
		Config("maxBodyBytes", strconv.FormatInt(cfg.MaxBodyBytes, 10)).
		Log()
}

func main() {
	adapter := httpadapter.NewV2(handler)
	lambda.Start(adapter.ProxyWithContext)
}
