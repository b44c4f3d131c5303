// Package main is a terminal front end for the doodle enhancer: it reads an
// image from disk, sends it through the same Enhancer the API uses and prints
// Gemini's critique.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/ai-doodle-enhancer/internal/auth"
	"github.com/fpang/ai-doodle-enhancer/internal/cli"
	"github.com/fpang/ai-doodle-enhancer/internal/config"
	"github.com/fpang/ai-doodle-enhancer/internal/enhance"
	"github.com/fpang/ai-doodle-enhancer/internal/logging"
)

// CLI flags
var (
	pickFlag     bool
	envFilesFlag []string
	modelFlag    string
	jsonFlag     bool
	validateFlag bool
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "doodle-cli",
	Short: "Art-critic feedback for a doodle from the terminal",
	Long: `Doodle CLI sends a local image to Gemini with the art-critic prompt and prints
the critique. It uses the same configuration and prompt as the API.

Examples:
  doodle-cli describe sketch.png
  doodle-cli describe --pick
  doodle-cli describe sketch.jpg --model gemini-1.5-pro --json
  doodle-cli describe  # Interactive mode - prompts for an image path
  doodle-cli info photo-of-sketch.jpg`,
}

var describeCmd = &cobra.Command{
	Use:   "describe [image]",
	Short: "Critique one image",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDescribe,
}

var infoCmd = &cobra.Command{
	Use:   "info [image]",
	Short: "Show the format, size and EXIF of an image without sending it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFilesFlag, "env-file", nil, "Env file(s) to load before reading the environment (default .env)")
	describeCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose the image with the native file dialog")
	describeCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use (overrides GEMINI_MODEL)")
	describeCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the API response body instead of plain text")
	describeCmd.Flags().BoolVar(&validateFlag, "validate-key", false, "Probe the API key before sending the image")
	infoCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose the image with the native file dialog")
	rootCmd.AddCommand(describeCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFilesFlag...)
	if err != nil {
		return err
	}
	logging.InitWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if modelFlag != "" {
		cfg.Model = modelFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path, err := imagePath(args)
	if err != nil {
		return err
	}

	key, err := auth.ResolveAPIKey(ctx, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to retrieve API key: %w", err)
	}
	cfg.APIKey = key

	if validateFlag {
		if err := auth.ValidateAPIKey(ctx, cfg.APIKey, cfg.Model); err != nil {
			log.Error().Err(err).Msg(cli.ValidationHint(err))
			return err
		}
		log.Info().Msg("API key validation complete")
	}

	imageData, err := cli.ReadImageDataURL(path, cfg.MaxBodyBytes)
	if err != nil {
		return err
	}

	start := time.Now()
	text, err := enhance.NewEnhancer(cfg, nil).Enhance(ctx, imageData)
	log.Debug().
		Str("path", path).
		Str("model", cfg.Model).
		Dur("duration", time.Since(start)).
		Msg("Critique finished")

	return printResult(cmd, text, err)
}

func runInfo(cmd *cobra.Command, args []string) error {
	logging.Init()
	path, err := imagePath(args)
	if err != nil {
		return err
	}
	details, err := cli.InspectImage(path)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), cli.FormatDetails(details))
	return nil
}

// imagePath resolves the image from the argument, the native picker, or stdin.
func imagePath(args []string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case pickFlag:
		return cli.PickImage()
	default:
		return cli.PromptForImage(os.Stdin, os.Stdout)
	}
}

// printResult writes the critique, or with --json the body the API would send.
func printResult(cmd *cobra.Command, text string, err error) error {
	out := cmd.OutOrStdout()
	if err != nil {
		var body any
		var reqErr *enhance.RequestError
		if errors.As(err, &reqErr) {
			body = map[string]string{"error": reqErr.Message}
		} else {
			body = enhance.Result{Success: false, Error: enhance.ErrorMessage(err)}
			log.Error().Err(err).Msg("Failed to critique doodle")
		}
		if jsonFlag {
			json.NewEncoder(out).Encode(body)
		}
		return errors.New(errorText(err))
	}

	if jsonFlag {
		return json.NewEncoder(out).Encode(enhance.Result{Success: true, EnhancedDescription: &text})
	}
	fmt.Fprintln(out, text)
	return nil
}

// errorText is the caller-safe message for err.
func errorText(err error) string {
	var reqErr *enhance.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return enhance.ErrorMessage(err)
}
