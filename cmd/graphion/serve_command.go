package main

import (
	"github.com/spf13/cobra"

	"graphion/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var opts daemonrun.Options
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Bind, "bind", "", "Listen address (overrides paths.api_bind)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	return cmd
}
