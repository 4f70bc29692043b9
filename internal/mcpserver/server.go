package mcpserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"graphion/internal/api"
	"graphion/internal/logging"
	"graphion/internal/pipeline"
	"graphion/internal/services"
)

// Implementation name advertised to clients.
const Name = "graphion"

// Runner runs one generation session.
type Runner interface {
	Run(ctx context.Context, prompt string) (pipeline.Result, error)
}

// GenerateInput is the generate_video argument object.
type GenerateInput struct {
	Prompt string `json:"prompt" jsonschema:"description of the animation to render"`
}

// GenerateOutput is the generate_video result.
type GenerateOutput struct {
	VideoPath string `json:"video_path" jsonschema:"absolute path of the MP4 on the server host"`
	VideoURL  string `json:"video_url" jsonschema:"path the HTTP server serves the MP4 under"`
	SessionID string `json:"session_id"`
	Frames    int    `json:"frames"`
}

// ProfileInput takes no arguments.
type ProfileInput struct{}

// New registers graphion's tools on a fresh MCP server.
func New(runner Runner, status api.ServerStatus, version string, logger *slog.Logger) *mcp.Server {
	logger = logging.NewComponentLogger(logger, "mcp")
	srv := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "generate_video",
		Description: "Generate a short MP4 animation from a text prompt. Takes tens of seconds.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in GenerateInput) (*mcp.CallToolResult, GenerateOutput, error) {
		res, err := runner.Run(ctx, in.Prompt)
		if err != nil {
			details := services.Details(err)
			logging.WithContext(ctx, logger).Info("generate_video failed",
				logging.String(logging.FieldEventType, "mcp_generate_failed"),
				logging.String("error_kind", details.Kind),
				logging.Error(err),
			)
			return nil, GenerateOutput{}, errors.New(details.Message)
		}
		return nil, GenerateOutput{
			VideoPath: res.Artifact.Path,
			VideoURL:  res.VideoPath,
			SessionID: res.SessionID,
			Frames:    res.Frames,
		}, nil
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "render_profile",
		Description: "Report the viewport, frame rate, duration, and encoder settings used for every video.",
	}, func(context.Context, *mcp.CallToolRequest, ProfileInput) (*mcp.CallToolResult, api.RenderProfile, error) {
		return nil, status.Render, nil
	})

	return srv
}

// ServeStdio runs srv over stdin/stdout until ctx is cancelled or the client
// disconnects.
func ServeStdio(ctx context.Context, srv *mcp.Server) error {
	return srv.Run(ctx, &mcp.StdioTransport{})
}
