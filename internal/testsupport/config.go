package testsupport

import (
	"path/filepath"
	"testing"

	"graphion/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The render profile is shrunk so pipeline tests stay fast; use WithRender to
// restore production values.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Gemini.APIKey = "test"
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.PublicDir = filepath.Join(base, "public")
	cfgVal.Paths.LogDir = ""
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Render.FPS = 10
	cfgVal.Render.DurationSeconds = 1

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return builder.cfg
}

// WithRender overrides frame sampling on the test config.
func WithRender(width, height, fps, seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.Width = width
		b.cfg.Render.Height = height
		b.cfg.Render.FPS = fps
		b.cfg.Render.DurationSeconds = seconds
	}
}

// WithGeminiEndpoint points the Gemini client at a test server.
func WithGeminiEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gemini.Endpoint = url
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
