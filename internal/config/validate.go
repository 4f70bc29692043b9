package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
)

var safetyThresholds = []string{
	"BLOCK_NONE",
	"BLOCK_ONLY_HIGH",
	"BLOCK_MEDIUM_AND_ABOVE",
	"BLOCK_LOW_AND_ABOVE",
	"OFF",
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.PublicDir == "" {
		return errors.New("paths.public_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateGemini() error {
	if c.Gemini.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("gemini.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'graphion config init')", defaultPath)
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return errors.New("gemini.temperature must be between 0 and 2")
	}
	if c.Gemini.MaxOutputTokens <= 0 {
		return errors.New("gemini.max_output_tokens must be positive")
	}
	if !slices.Contains(safetyThresholds, c.Gemini.SafetyThreshold) {
		return fmt.Errorf("gemini.safety_threshold: unsupported value %q", c.Gemini.SafetyThreshold)
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.New("render.width and render.height must be positive")
	}
	if c.Render.Width%2 != 0 || c.Render.Height%2 != 0 {
		return errors.New("render.width and render.height must be even for yuv420p output")
	}
	if c.Render.FPS <= 0 || c.Render.FPS > 120 {
		return errors.New("render.fps must be between 1 and 120")
	}
	if c.Render.DurationSeconds <= 0 {
		return errors.New("render.duration_seconds must be positive")
	}
	switch c.Render.ImageFormat {
	case ImageFormatWebP, ImageFormatJPEG, ImageFormatPNG:
	default:
		return fmt.Errorf("render.image_format: unsupported value %q", c.Render.ImageFormat)
	}
	if c.Render.ImageQuality < 1 || c.Render.ImageQuality > 100 {
		return errors.New("render.image_quality must be between 1 and 100")
	}
	if c.Render.NavigationTimeoutSeconds <= 0 {
		return errors.New("render.navigation_timeout_seconds must be positive")
	}
	if c.Render.NetworkIdleMillis < 0 {
		return errors.New("render.network_idle_ms must be >= 0")
	}
	switch c.Render.Pacing {
	case PacingBestEffort, PacingWallClock:
	default:
		return fmt.Errorf("render.pacing: unsupported value %q", c.Render.Pacing)
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.CRF < 0 || c.Encoding.CRF > 51 {
		return errors.New("encoding.crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.MinPromptLength < 1 {
		return errors.New("server.min_prompt_length must be at least 1")
	}
	if c.Server.MaxBodyBytes < 1024 {
		return errors.New("server.max_body_bytes must be at least 1024")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
