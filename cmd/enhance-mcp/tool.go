package main

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-doodle-enhancer/internal/cli"
	"github.com/fpang/ai-doodle-enhancer/internal/enhance"
	"github.com/fpang/ai-doodle-enhancer/internal/logging"
)

const toolName = "enhance_doodle"

// enhanceInput is the enhance_doodle argument object. Exactly one of
// ImageData and Path is required.
type enhanceInput struct {
	ImageData string `json:"imageData,omitempty" jsonschema:"the image as a base64 data URL, e.g. data:image/png;base64,..."`
	Path      string `json:"path,omitempty" jsonschema:"path to a local image file, read instead of imageData"`
}

type enhanceOutput struct {
	EnhancedDescription string `json:"enhancedDescription"`
}

var errNoImage = errors.New("one of imageData or path is required")

// newServer registers enhance_doodle backed by e. Files named by path are
// capped at maxBytes once encoded, like request bodies.
func newServer(e *enhance.Enhancer, maxBytes int64) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "ai-doodle-enhancer", Version: commitHash}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        toolName,
		Description: "Critique a doodle or sketch like an art critic: what it shows, its style, and how to improve it.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in enhanceInput) (*mcp.CallToolResult, enhanceOutput, error) {
		imageData := in.ImageData
		if in.Path != "" {
			var err error
			imageData, err = cli.ReadImageDataURL(in.Path, maxBytes)
			if err != nil {
				return nil, enhanceOutput{}, err
			}
		}
		if imageData == "" {
			return nil, enhanceOutput{}, errNoImage
		}

		ctx = logging.WithLogger(ctx, log.With().Str("tool", toolName).Logger())
		text, err := e.Enhance(ctx, imageData)
		if err != nil {
			var reqErr *enhance.RequestError
			if errors.As(err, &reqErr) {
				return nil, enhanceOutput{}, reqErr
			}
			logging.FromContext(ctx).Error().Err(err).Msg("Enhancement error")
			return nil, enhanceOutput{}, errors.New(enhance.ErrorMessage(err))
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, enhanceOutput{EnhancedDescription: text}, nil
	})

	return server
}
