// Package lambdaboot provides the Lambda cold-start bootstrap: AWS config,
// the Gemini key from SSM Parameter Store, and the start-up log event.
package lambdaboot

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-doodle-enhancer/internal/config"
	"github.com/fpang/ai-doodle-enhancer/internal/logging"
)

// ParameterGetter is the slice of the SSM API the bootstrap needs.
type ParameterGetter interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// AWSClients holds the AWS SDK clients used at cold start.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// InitAWS loads the default AWS config and builds the SSM client.
// Fatals if the config cannot be loaded.
func InitAWS(ctx context.Context) AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// LoadGeminiKey fills cfg.APIKey from the SSM parameter cfg.SSMAPIKeyParam
// unless GEMINI_API_KEY already provided one. Failure is logged, not fatal:
// the handler answers each request with "API key not configured" instead.
// It reports whether cfg ends up with a key.
func LoadGeminiKey(ctx context.Context, getter ParameterGetter, cfg *config.Config) bool {
	if cfg.APIKeyConfigured() {
		return true
	}
	if getter == nil {
		log.Warn().Msg("No SSM client, Gemini API key not loaded")
		return false
	}

	paramName := cfg.SSMAPIKeyParam
	ssmStart := time.Now()
	result, err := getter.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		log.Warn().Err(err).Str("param", paramName).Msg("Failed to read API key from SSM")
		return false
	}
	if result == nil || result.Parameter == nil || result.Parameter.Value == nil {
		log.Warn().Str("param", paramName).Msg("SSM parameter has no value")
		return false
	}

	cfg.APIKey = strings.TrimSpace(*result.Parameter.Value)
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Gemini API key loaded from SSM")
	return cfg.APIKeyConfigured()
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
