package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	PublicDir string `toml:"public_dir"`
	LogDir    string `toml:"log_dir"`
	APIBind   string `toml:"api_bind"`
}

// Gemini contains connection and sampling settings for markup generation.
type Gemini struct {
	APIKey          string  `toml:"api_key"`
	Model           string  `toml:"model"`
	Endpoint        string  `toml:"endpoint"`
	Temperature     float64 `toml:"temperature"`
	MaxOutputTokens int     `toml:"max_output_tokens"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	SafetyThreshold string  `toml:"safety_threshold"`
}

// Render contains the viewport, sampling, and browser settings used during
// frame capture.
type Render struct {
	Width                    int    `toml:"width"`
	Height                   int    `toml:"height"`
	FPS                      int    `toml:"fps"`
	DurationSeconds          int    `toml:"duration_seconds"`
	ImageFormat              string `toml:"image_format"`
	ImageQuality             int    `toml:"image_quality"`
	NavigationTimeoutSeconds int    `toml:"navigation_timeout_seconds"`
	NetworkIdleMillis        int    `toml:"network_idle_ms"`
	BrowserBin               string `toml:"browser_bin"`
	NoSandbox                bool   `toml:"no_sandbox"`
	Pacing                   string `toml:"pacing"`
}

// Encoding contains the ffmpeg profile used to assemble frames into MP4.
type Encoding struct {
	FFmpegBinary string `toml:"ffmpeg_binary"`
	Codec        string `toml:"codec"`
	CRF          int    `toml:"crf"`
	Preset       string `toml:"preset"`
	PixelFormat  string `toml:"pixel_format"`
}

// Server contains HTTP request limits.
type Server struct {
	MinPromptLength int   `toml:"min_prompt_length"`
	MaxBodyBytes    int64 `toml:"max_body_bytes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for graphion.
//
// Configuration sections by subsystem:
//   - Paths: work, public, and log directories plus the API bind address
//   - Gemini: markup generation model and sampling
//   - Render: headless browser viewport and frame sampling
//   - Encoding: ffmpeg video profile
//   - Server: request validation limits
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Gemini   Gemini   `toml:"gemini"`
	Render   Render   `toml:"render"`
	Encoding Encoding `toml:"encoding"`
	Server   Server   `toml:"server"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("graphion.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// VideosDir is where finished artifacts land. It sits under the public
// directory so static serving exposes them at /videos/.
func (c *Config) VideosDir() string {
	return filepath.Join(c.Paths.PublicDir, "videos")
}

// EnsureDirectories creates the work, public, videos, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.PublicDir, c.VideosDir(), c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FrameCount is the number of frames captured per session.
func (c *Config) FrameCount() int {
	return c.Render.FPS * c.Render.DurationSeconds
}

// NavigationTimeout bounds page load plus the network idle wait.
func (c *Config) NavigationTimeout() time.Duration {
	return time.Duration(c.Render.NavigationTimeoutSeconds) * time.Second
}

// NetworkIdle is the quiet window required before capture starts.
func (c *Config) NetworkIdle() time.Duration {
	return time.Duration(c.Render.NetworkIdleMillis) * time.Millisecond
}

// GeminiTimeout bounds a single generateContent call.
func (c *Config) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

// LockPath is the single-instance lock guarding the work directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.WorkDir, "graphiond.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		switch {
		case pathValue == "~":
			pathValue = home
		case len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\'):
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
