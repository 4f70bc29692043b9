package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"graphion/internal/api"
	"graphion/internal/preflight"
)

var errPreflightFailed = errors.New("one or more required checks failed")

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, external tools, and Gemini access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runDoctor(cmd, cfg.Paths.APIBind, preflight.RunAll(cmd.Context(), cfg), api.FromConfig(cfg).Render)
		},
	}
}

func runDoctor(cmd *cobra.Command, bind string, results []preflight.Result, profile api.RenderProfile) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	lines := renderSectionHeader("Environment", colorize)
	lines = append(lines, preflightLines(results, colorize)...)
	lines = append(lines, renderStatusLine("API bind", statusInfo, bind, colorize), "")
	lines = append(lines, renderSectionHeader("Render profile", colorize)...)
	fmt.Fprintln(out, strings.Join(lines, "\n"))
	fmt.Fprintln(out, profileTable(profile))

	if preflight.Failed(results) {
		return errPreflightFailed
	}
	return nil
}
