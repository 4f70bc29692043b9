package daemonrun

import (
	"context"
	"fmt"
	"log/slog"

	"graphion/internal/capture"
	"graphion/internal/config"
	"graphion/internal/encoding"
	"graphion/internal/logging"
	"graphion/internal/markup"
	"graphion/internal/pipeline"
	"graphion/internal/services/gemini"
)

// Components are the collaborators behind one orchestrator.
type Components struct {
	Gemini       *gemini.Client
	Generator    *markup.Generator
	Engine       *capture.Engine
	Assembler    *encoding.Assembler
	Orchestrator *pipeline.Orchestrator
}

// Build constructs the production pipeline for cfg. lifetime bounds every
// run; pass the daemon or command context.
func Build(lifetime context.Context, cfg *config.Config, logger *slog.Logger, opts ...gemini.Option) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	client, err := gemini.NewClient(lifetime, gemini.ConfigFromApp(cfg), opts...)
	if err != nil {
		return nil, err
	}

	generator := markup.NewGenerator(client, markup.Viewport{
		Width:           cfg.Render.Width,
		Height:          cfg.Render.Height,
		DurationSeconds: cfg.Render.DurationSeconds,
	}, logger)
	engine := capture.NewEngine(capture.ConfigFromApp(cfg), capture.RodLauncher{
		Bin:       cfg.Render.BrowserBin,
		NoSandbox: cfg.Render.NoSandbox,
		Logger:    logger,
	}, logger)
	assembler := encoding.NewAssembler(encoding.ProfileFromApp(cfg), cfg.VideosDir(), nil, logger)
	orchestrator := pipeline.New(pipeline.ConfigFromApp(cfg), generator, engine, assembler, logger,
		pipeline.WithLifetime(lifetime),
		pipeline.WithObserver(transitionLogger(logger)))

	return &Components{
		Gemini:       client,
		Generator:    generator,
		Engine:       engine,
		Assembler:    assembler,
		Orchestrator: orchestrator,
	}, nil
}

func transitionLogger(logger *slog.Logger) pipeline.Observer {
	logger = logging.NewComponentLogger(logger, "session")
	return func(t pipeline.Transition) {
		logger.Debug("session state changed",
			logging.String(logging.FieldSessionID, t.SessionID),
			logging.String("from", string(t.From)),
			logging.String("to", string(t.To)),
		)
	}
}
