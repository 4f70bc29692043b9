package daemonrun

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"graphion/internal/config"
	"graphion/internal/daemon"
	"graphion/internal/logging"
	"graphion/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
	// Bind overrides paths.api_bind when non-empty.
	Bind string
}

// Run starts the HTTP daemon and blocks until SIGINT/SIGTERM or ctx ends.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.Bind != "" {
		cfg.Paths.APIBind = opts.Bind
	}

	ctx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		if result.Optional {
			logger.Info("optional preflight check failed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run graphion doctor for details"),
			logging.String(logging.FieldImpact, "generation requests may fail"),
		)
	}

	components, err := Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	d, err := daemon.New(cfg, components.Orchestrator, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	<-ctx.Done()
	logger.Info("graphiond shutting down", logging.String(logging.FieldEventType, "shutdown"))
	d.Stop()
	return d.Wait()
}
