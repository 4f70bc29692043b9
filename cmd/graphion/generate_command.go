package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"graphion/internal/daemonctl"
	"graphion/internal/daemonrun"
	"graphion/internal/fileutil"
	"graphion/internal/pipeline"
	"graphion/internal/services"
	"graphion/internal/textutil"
)

const (
	maxOutputSlug      = 48
	remoteReadyTimeout = 5 * time.Second
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var output string
	var remote bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a video from a prompt",
		Long: "Generate a video from a prompt.\n\n" +
			"By default the pipeline runs in this process. With --remote the prompt is\n" +
			"submitted to the daemon at paths.api_bind instead.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if remote {
				return generateRemote(cmd.Context(), out, daemonctl.New(cfg.Paths.APIBind, nil), prompt, remoteReadyTimeout)
			}

			logger, err := ctx.logger(verbose)
			if err != nil {
				return err
			}
			components, err := daemonrun.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			res, err := components.Orchestrator.Run(cmd.Context(), prompt)
			if err != nil {
				return generateError(err)
			}
			return reportLocalResult(out, res, prompt, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Copy the finished video to this file or directory")
	cmd.Flags().BoolVar(&remote, "remote", false, "Submit the prompt to a running daemon")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	return cmd
}

func generateRemote(ctx context.Context, out io.Writer, client *daemonctl.Client, prompt string, readyTimeout time.Duration) error {
	if err := client.WaitReady(ctx, readyTimeout); err != nil {
		return fmt.Errorf("%w (start it with: graphion serve)", err)
	}
	resp, err := client.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session:  %s\n", resp.SessionID)
	fmt.Fprintf(out, "Video:    %s\n", client.VideoURL(resp.VideoURL))
	return nil
}

func reportLocalResult(out io.Writer, res pipeline.Result, prompt, output string) error {
	path := res.Artifact.Path
	if strings.TrimSpace(output) != "" {
		dest, err := resolveOutputPath(output, prompt)
		if err != nil {
			return err
		}
		if err := fileutil.CopyFileVerified(res.Artifact.Path, dest); err != nil {
			return fmt.Errorf("copy video to %s: %w", dest, err)
		}
		path = dest
	}
	fmt.Fprintf(out, "Session:  %s\n", res.SessionID)
	fmt.Fprintf(out, "Frames:   %d\n", res.Frames)
	fmt.Fprintf(out, "Elapsed:  %s\n", res.Duration.Round(100*time.Millisecond))
	fmt.Fprintf(out, "Video:    %s\n", path)
	return nil
}

// resolveOutputPath turns --output into a file path. An existing directory
// (or a value ending in a separator) receives a name derived from the prompt.
func resolveOutputPath(output, prompt string) (string, error) {
	output = strings.TrimSpace(output)
	isDir := strings.HasSuffix(output, string(os.PathSeparator)) || strings.HasSuffix(output, "/")
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		isDir = true
	}
	if !isDir {
		return output, nil
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return filepath.Join(output, textutil.SanitizeToken(prompt, maxOutputSlug)+".mp4"), nil
}

// generateError keeps the caller-facing message and appends the diagnostic
// chain for the terminal.
func generateError(err error) error {
	details := services.Details(err)
	return fmt.Errorf("%s\n  cause: %w", details.Message, err)
}
