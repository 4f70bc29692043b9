package main

import (
	"github.com/spf13/cobra"

	"graphion/internal/api"
	"graphion/internal/daemonrun"
	"graphion/internal/mcpserver"
)

func newMCPCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the generate_video tool over MCP stdio",
		Long: "Serve graphion as a Model Context Protocol server on stdin/stdout.\n\n" +
			"Logs go to stderr and the log file so stdout carries only protocol frames.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			components, err := daemonrun.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			srv := mcpserver.New(components.Orchestrator, api.FromConfig(cfg), version, logger)
			return mcpserver.ServeStdio(cmd.Context(), srv)
		},
	}
}
