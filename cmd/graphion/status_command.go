package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"graphion/internal/daemonctl"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client := daemonctl.New(cfg.Paths.APIBind, nil)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			running, _, err := client.ProcessInfo(cmd.Context())
			if err != nil {
				return err
			}
			if !running {
				if jsonOutput {
					return writeJSON(cmd, map[string]any{"running": false})
				}
				fmt.Fprintln(out, renderStatusLine("Daemon", statusError, "Not running", colorize))
				return nil
			}

			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, status)
			}

			lines := renderSectionHeader("Daemon", colorize)
			lines = append(lines,
				renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize),
				renderStatusLine("Address", statusInfo, client.BaseURL(), colorize),
				renderStatusLine("Started", statusInfo, status.StartedAt, colorize),
				renderStatusLine("Model", statusInfo, status.Model, colorize),
				renderStatusLine("Work directory", statusInfo, status.WorkDir, colorize),
				renderStatusLine("Public directory", statusInfo, status.PublicDir, colorize),
				"",
			)
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(status.Dependencies, colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Render profile", colorize)...)
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			fmt.Fprintln(out, profileTable(status.Render))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw status payload")
	return cmd
}
