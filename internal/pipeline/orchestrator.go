package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"graphion/internal/capture"
	"graphion/internal/config"
	"graphion/internal/encoding"
	"graphion/internal/logging"
	"graphion/internal/markup"
	"graphion/internal/services"
	"graphion/internal/textutil"
)

// Generator turns a prompt into an animation document.
type Generator interface {
	Generate(ctx context.Context, prompt string) (markup.Document, error)
}

// Renderer captures a document into frames inside workDir.
type Renderer interface {
	Capture(ctx context.Context, html, workDir string) (capture.FrameSet, error)
}

// Encoder assembles frames into a published video.
type Encoder interface {
	Assemble(ctx context.Context, frames capture.FrameSet, expected int, sessionID string) (encoding.Artifact, error)
}

// Config is the orchestrator's view of application configuration.
type Config struct {
	WorkRoot        string
	MinPromptLength int
	Width           int
	Height          int
	FPS             int
	DurationSeconds int
}

// ConfigFromApp derives orchestrator settings from application config.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		WorkRoot:        cfg.Paths.WorkDir,
		MinPromptLength: cfg.Server.MinPromptLength,
		Width:           cfg.Render.Width,
		Height:          cfg.Render.Height,
		FPS:             cfg.Render.FPS,
		DurationSeconds: cfg.Render.DurationSeconds,
	}
}

// Result describes a successful run.
type Result struct {
	SessionID string
	VideoPath string
	Artifact  encoding.Artifact
	Frames    int
	Duration  time.Duration
}

// Orchestrator runs sessions. It is safe for concurrent use; sessions share
// nothing but the work root.
type Orchestrator struct {
	cfg       Config
	generator Generator
	renderer  Renderer
	encoder   Encoder
	logger    *slog.Logger
	observer  Observer
	lifetime  context.Context
}

// Option customizes the orchestrator.
type Option func(*Orchestrator)

// WithObserver registers a transition callback.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithLifetime bounds every run by ctx in addition to the caller's context
// values. Request cancellation is ignored; lifetime cancellation is not.
func WithLifetime(ctx context.Context) Option {
	return func(o *Orchestrator) { o.lifetime = ctx }
}

// New builds an orchestrator.
func New(cfg Config, generator Generator, renderer Renderer, encoder Encoder, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		generator: generator,
		renderer:  renderer,
		encoder:   encoder,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one session for prompt. The returned error carries a services
// marker; services.Details maps it to a caller-facing message.
func (o *Orchestrator) Run(ctx context.Context, prompt string) (Result, error) {
	prompt = textutil.NormalizePrompt(prompt)
	if textutil.RuneLength(prompt) < o.cfg.MinPromptLength {
		return Result{}, services.Wrap(services.ErrPromptTooShort, "pipeline", "validate prompt",
			fmt.Sprintf("minimum %d characters", o.cfg.MinPromptLength), nil)
	}

	runCtx, cancel := o.detach(ctx)
	defer cancel()

	session := newSession(o.cfg, prompt)
	runCtx = services.WithSessionID(runCtx, session.ID)
	logger := logging.WithContext(runCtx, o.logger)
	logger.Info("session created",
		logging.String(logging.FieldEventType, "session_created"),
		logging.Int("prompt_chars", textutil.RuneLength(prompt)),
		logging.String("work_dir", session.WorkDir),
	)
	defer o.cleanup(logger, session)

	var doc markup.Document
	err := o.runStage(runCtx, session, StateGeneratingMarkup, func(stageCtx context.Context) error {
		if err := os.MkdirAll(session.WorkDir, 0o755); err != nil {
			return services.Wrap(services.ErrCaptureFailed, "pipeline", "create work dir", session.WorkDir, err)
		}
		var genErr error
		doc, genErr = o.generator.Generate(stageCtx, session.Prompt)
		return genErr
	})
	if err != nil {
		return Result{}, err
	}

	var frames capture.FrameSet
	err = o.runStage(runCtx, session, StateCapturing, func(stageCtx context.Context) error {
		var capErr error
		frames, capErr = o.renderer.Capture(stageCtx, doc.HTML, session.WorkDir)
		return capErr
	})
	if err != nil {
		return Result{}, err
	}

	var artifact encoding.Artifact
	err = o.runStage(runCtx, session, StateEncoding, func(stageCtx context.Context) error {
		var encErr error
		artifact, encErr = o.encoder.Assemble(stageCtx, frames, session.ExpectedFrames(), session.ID)
		return encErr
	})
	if err != nil {
		return Result{}, err
	}

	o.transition(session, StateDone, nil)
	result := Result{
		SessionID: session.ID,
		VideoPath: artifact.PublicPath,
		Artifact:  artifact,
		Frames:    frames.Count,
		Duration:  time.Since(session.StartedAt),
	}
	logger.Info("session complete",
		logging.String(logging.FieldEventType, "session_complete"),
		logging.String("video_path", result.VideoPath),
		logging.Int("frames", result.Frames),
		logging.Int64("size_bytes", artifact.SizeBytes),
		logging.Duration("elapsed", result.Duration),
	)
	return result, nil
}

func (o *Orchestrator) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if o.lifetime == nil {
		return runCtx, cancel
	}
	if o.lifetime.Err() != nil {
		cancel()
		return runCtx, cancel
	}
	stop := context.AfterFunc(o.lifetime, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (o *Orchestrator) runStage(ctx context.Context, session *Session, state State, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, string(state))
	stageLogger := logging.WithContext(stageCtx, o.logger)
	o.transition(session, state, nil)
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	started := time.Now()
	if err := fn(stageCtx); err != nil {
		details := services.Details(err)
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("error_kind", details.Kind),
			logging.String("error_message", strings.TrimSpace(details.Message)),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		o.transition(session, StateFailed, err)
		return err
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (o *Orchestrator) transition(session *Session, to State, err error) {
	from := session.State
	if from.Terminal() {
		return
	}
	session.State = to
	if o.observer != nil {
		o.observer(Transition{SessionID: session.ID, From: from, To: to, Err: err})
	}
}

func (o *Orchestrator) cleanup(logger *slog.Logger, session *Session) {
	if err := os.RemoveAll(session.WorkDir); err != nil {
		wrapped := services.Wrap(services.ErrInternalCleanup, "pipeline", "remove work dir", session.WorkDir, err)
		logging.WarnWithContext(logger, "work directory cleanup failed", "cleanup_failed",
			logging.Error(wrapped),
			logging.String(logging.FieldErrorHint, "remove the directory manually"),
			logging.String(logging.FieldImpact, "disk space is not reclaimed"),
		)
	}
}
