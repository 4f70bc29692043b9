package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"graphion/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "graphion", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.VideosDir() != filepath.Join(tempHome, ".local", "share", "graphion", "public", "videos") {
		t.Fatalf("unexpected videos dir: %q", cfg.VideosDir())
	}
	if cfg.Paths.APIBind != "127.0.0.1:3000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Gemini.APIKey != "test-key" {
		t.Fatalf("expected Gemini key from env, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %q", cfg.Gemini.Model)
	}
	if cfg.FrameCount() != 150 {
		t.Fatalf("expected 150 frames by default, got %d", cfg.FrameCount())
	}
	if cfg.Render.Width != 1280 || cfg.Render.Height != 720 {
		t.Fatalf("unexpected viewport %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.ImageFormat != config.ImageFormatWebP || cfg.Render.ImageQuality != 80 {
		t.Fatalf("unexpected frame format %s q%d", cfg.Render.ImageFormat, cfg.Render.ImageQuality)
	}
	if cfg.Encoding.CRF != 23 || cfg.Encoding.PixelFormat != "yuv420p" || cfg.Encoding.Codec != "libx264" {
		t.Fatalf("unexpected encoding profile %+v", cfg.Encoding)
	}
	if cfg.Render.Pacing != config.PacingBestEffort {
		t.Fatalf("unexpected pacing %q", cfg.Render.Pacing)
	}
}

func TestLoadMissingAPIKeyFails(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected missing api key error")
	}
	if !strings.Contains(err.Error(), "gemini.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadFromFileOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "graphion.toml")
	content := `
[paths]
work_dir = "` + filepath.ToSlash(filepath.Join(dir, "work")) + `"
public_dir = "` + filepath.ToSlash(filepath.Join(dir, "public")) + `"
api_bind = "0.0.0.0:8080"

[gemini]
api_key = " file-key "
model = "models/gemini-2.5-pro"

[render]
fps = 24
duration_seconds = 2
image_format = "JPG"
pacing = "Wall_Clock"

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Gemini.APIKey != "file-key" {
		t.Fatalf("expected trimmed key, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Fatalf("expected models/ prefix stripped, got %q", cfg.Gemini.Model)
	}
	if cfg.FrameCount() != 48 {
		t.Fatalf("expected 48 frames, got %d", cfg.FrameCount())
	}
	if cfg.Render.ImageFormat != config.ImageFormatJPEG {
		t.Fatalf("expected jpg alias to normalize, got %q", cfg.Render.ImageFormat)
	}
	if cfg.Render.Pacing != config.PacingWallClock {
		t.Fatalf("unexpected pacing %q", cfg.Render.Pacing)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format %q", cfg.Logging.Format)
	}
	if cfg.Paths.APIBind != "0.0.0.0:8080" {
		t.Fatalf("unexpected bind %q", cfg.Paths.APIBind)
	}
}

func TestPortEnvOverridesBind(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("PORT", "4100")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIBind != "127.0.0.1:4100" {
		t.Fatalf("expected PORT override, got %q", cfg.Paths.APIBind)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"odd width", func(c *config.Config) { c.Render.Width = 1279 }, "even"},
		{"zero fps", func(c *config.Config) { c.Render.FPS = 0 }, "render.fps"},
		{"bad format", func(c *config.Config) { c.Render.ImageFormat = "gif" }, "render.image_format"},
		{"quality", func(c *config.Config) { c.Render.ImageQuality = 101 }, "render.image_quality"},
		{"pacing", func(c *config.Config) { c.Render.Pacing = "turbo" }, "render.pacing"},
		{"crf", func(c *config.Config) { c.Encoding.CRF = 60 }, "encoding.crf"},
		{"threshold", func(c *config.Config) { c.Gemini.SafetyThreshold = "MAYBE" }, "gemini.safety_threshold"},
		{"temperature", func(c *config.Config) { c.Gemini.Temperature = 3 }, "gemini.temperature"},
		{"min prompt", func(c *config.Config) { c.Server.MinPromptLength = 0 }, "server.min_prompt_length"},
		{"bind", func(c *config.Config) { c.Paths.APIBind = "localhost" }, "paths.api_bind"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Gemini.APIKey = "k"
			cfg.Paths.WorkDir = t.TempDir()
			cfg.Paths.PublicDir = t.TempDir()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	def := config.Default()
	if cfg.Render != def.Render {
		t.Fatalf("sample render section %+v differs from defaults %+v", cfg.Render, def.Render)
	}
	if cfg.Encoding != def.Encoding {
		t.Fatalf("sample encoding section %+v differs from defaults %+v", cfg.Encoding, def.Encoding)
	}
	if cfg.Gemini.Model != def.Gemini.Model || cfg.Gemini.MaxOutputTokens != def.Gemini.MaxOutputTokens {
		t.Fatalf("sample gemini section differs: %+v", cfg.Gemini)
	}
}

func TestCreateSampleAndEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sample not written: %v", err)
	}

	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(dir, "work")
	cfg.Paths.PublicDir = filepath.Join(dir, "public")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{cfg.Paths.WorkDir, cfg.VideosDir(), cfg.Paths.LogDir} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", d, err)
		}
	}
}
