package capture

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"graphion/internal/config"
	"graphion/internal/logging"
	"graphion/internal/services"
)

const (
	// DocumentName is the file the markup is written to inside the session workdir.
	DocumentName = "index.html"
	// FrameDirName holds the captured image sequence inside the session workdir.
	FrameDirName = "frames"
	// FramePattern is the printf pattern for frame files (without extension).
	FramePattern = "frame_%05d"
)

// Config is the capture profile.
type Config struct {
	Viewport          Viewport
	FPS               int
	DurationSeconds   int
	Image             ImageSpec
	NavigationTimeout time.Duration
	NetworkIdle       time.Duration
	Pacing            string
}

// ConfigFromApp derives the capture profile from application config.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		Viewport:          Viewport{Width: cfg.Render.Width, Height: cfg.Render.Height},
		FPS:               cfg.Render.FPS,
		DurationSeconds:   cfg.Render.DurationSeconds,
		Image:             ImageSpec{Format: cfg.Render.ImageFormat, Quality: cfg.Render.ImageQuality},
		NavigationTimeout: cfg.NavigationTimeout(),
		NetworkIdle:       cfg.NetworkIdle(),
		Pacing:            cfg.Render.Pacing,
	}
}

// FrameCount is the number of frames a capture produces.
func (c Config) FrameCount() int {
	return c.FPS * c.DurationSeconds
}

// FrameSet describes a completed image sequence on disk.
type FrameSet struct {
	Dir       string
	Extension string
	Count     int
	Width     int
	Height    int
	FPS       int
}

// Pattern returns the ffmpeg input pattern for the sequence.
func (f FrameSet) Pattern() string {
	return filepath.Join(f.Dir, FramePattern+"."+f.Extension)
}

// FramePath returns the path of frame i.
func (f FrameSet) FramePath(i int) string {
	return filepath.Join(f.Dir, fmt.Sprintf(FramePattern+".%s", i, f.Extension))
}

// Engine captures documents into frame sets.
type Engine struct {
	cfg      Config
	launcher Launcher
	clock    Clock
	logger   *slog.Logger
}

// Option customizes the engine.
type Option func(*Engine)

// WithClock overrides the pacing clock (useful for tests).
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine builds a capture engine.
func NewEngine(cfg Config, launcher Launcher, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		launcher: launcher,
		clock:    realClock{},
		logger:   logging.NewComponentLogger(logger, "capture"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Capture writes html into workDir, renders it, and samples the configured
// number of frames into workDir/frames. Any failure aborts the loop and is
// reported as services.ErrCaptureFailed; partial frames are left for the
// caller's workdir cleanup.
func (e *Engine) Capture(ctx context.Context, html, workDir string) (FrameSet, error) {
	logger := logging.WithContext(ctx, e.logger)
	set := FrameSet{
		Dir:       filepath.Join(workDir, FrameDirName),
		Extension: e.cfg.Image.Format,
		Width:     e.cfg.Viewport.Width,
		Height:    e.cfg.Viewport.Height,
		FPS:       e.cfg.FPS,
	}

	docPath := filepath.Join(workDir, DocumentName)
	if err := os.WriteFile(docPath, []byte(html), 0o644); err != nil {
		return set, services.Wrap(services.ErrCaptureFailed, "capture", "write document", "", err)
	}
	if err := os.MkdirAll(set.Dir, 0o755); err != nil {
		return set, services.Wrap(services.ErrCaptureFailed, "capture", "create frame dir", "", err)
	}

	browser, err := e.launcher.Launch(ctx)
	if err != nil {
		return set, services.Wrap(services.ErrCaptureFailed, "capture", "launch browser", "", err)
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			logger.Debug("browser close reported error", logging.Error(cerr))
		}
	}()

	page, err := browser.NewPage(ctx, e.cfg.Viewport)
	if err != nil {
		return set, services.Wrap(services.ErrCaptureFailed, "capture", "open page", "", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.Load(ctx, fileURL(docPath), e.cfg.NetworkIdle, e.cfg.NavigationTimeout); err != nil {
		return set, services.Wrap(services.ErrCaptureFailed, "capture", "load document", "", err)
	}

	total := e.cfg.FrameCount()
	sampler := logging.NewProgressSampler(20)
	pace := newPacer(e.cfg.Pacing, e.cfg.FPS, e.clock)
	pace.begin()
	started := time.Now()
	for i := range total {
		shotStart := e.clock.Now()
		data, err := page.Screenshot(ctx, e.cfg.Image)
		if err != nil {
			return set, services.Wrap(services.ErrCaptureFailed, "capture", "screenshot",
				fmt.Sprintf("frame %d of %d", i, total), err)
		}
		if err := os.WriteFile(set.FramePath(i), data, 0o644); err != nil {
			return set, services.Wrap(services.ErrCaptureFailed, "capture", "write frame",
				fmt.Sprintf("frame %d of %d", i, total), err)
		}
		set.Count = i + 1
		if pct := logging.Percent(set.Count, total); sampler.ShouldLog(pct, "capture") {
			logger.Info("capture progress",
				logging.String(logging.FieldEventType, "frame_progress"),
				logging.Int("frames", set.Count),
				logging.Int("total", total),
			)
		}
		if i == total-1 {
			break
		}
		if err := pace.wait(ctx, i, shotStart); err != nil {
			return set, services.Wrap(services.ErrCaptureFailed, "capture", "pace", "interrupted", err)
		}
	}

	onDisk, err := CountFrames(set.Dir, set.Extension)
	if err != nil {
		return set, services.Wrap(services.ErrCaptureFailed, "capture", "verify frames", "", err)
	}
	if onDisk != total {
		return set, services.Wrap(services.ErrCaptureFailed, "capture", "verify frames",
			fmt.Sprintf("found %d frames, expected %d", onDisk, total), nil)
	}
	logger.Info("capture complete",
		logging.String(logging.FieldEventType, "capture_complete"),
		logging.Int("frames", onDisk),
		logging.Duration("elapsed", time.Since(started)),
	)
	return set, nil
}

// CountFrames counts files matching frame_*.<ext> in dir.
func CountFrames(dir, ext string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.Type().IsRegular() && strings.HasPrefix(name, "frame_") && strings.HasSuffix(name, "."+ext) {
			count++
		}
	}
	return count, nil
}

func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
