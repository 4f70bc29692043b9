package config

import (
	"fmt"
	"net"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGemini()
	c.normalizeRender()
	c.normalizeEncoding()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.PublicDir, err = expandPath(c.Paths.PublicDir); err != nil {
		return fmt.Errorf("paths.public_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if port, ok := os.LookupEnv("PORT"); ok && strings.TrimSpace(port) != "" {
		host, _, err := net.SplitHostPort(c.Paths.APIBind)
		if err != nil {
			return fmt.Errorf("paths.api_bind: %w", err)
		}
		c.Paths.APIBind = net.JoinHostPort(host, strings.TrimSpace(port))
	}
	return nil
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.Model = strings.TrimPrefix(strings.TrimSpace(c.Gemini.Model), "models/")
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	c.Gemini.Endpoint = strings.TrimSpace(c.Gemini.Endpoint)
	c.Gemini.SafetyThreshold = strings.ToUpper(strings.TrimSpace(c.Gemini.SafetyThreshold))
	if c.Gemini.SafetyThreshold == "" {
		c.Gemini.SafetyThreshold = defaultSafetyThreshold
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeout
	}
}

func (c *Config) normalizeRender() {
	c.Render.ImageFormat = strings.ToLower(strings.TrimSpace(c.Render.ImageFormat))
	switch c.Render.ImageFormat {
	case "":
		c.Render.ImageFormat = defaultImageFormat
	case "jpg":
		c.Render.ImageFormat = ImageFormatJPEG
	}
	c.Render.Pacing = strings.ToLower(strings.TrimSpace(c.Render.Pacing))
	if c.Render.Pacing == "" {
		c.Render.Pacing = defaultPacing
	}
	c.Render.BrowserBin = strings.TrimSpace(c.Render.BrowserBin)
	if c.Render.BrowserBin != "" && strings.HasPrefix(c.Render.BrowserBin, "~") {
		if expanded, err := expandPath(c.Render.BrowserBin); err == nil {
			c.Render.BrowserBin = expanded
		}
	}
}

func (c *Config) normalizeEncoding() {
	c.Encoding.FFmpegBinary = strings.TrimSpace(c.Encoding.FFmpegBinary)
	if c.Encoding.FFmpegBinary == "" {
		c.Encoding.FFmpegBinary = defaultFFmpegBinary
	}
	c.Encoding.Codec = strings.TrimSpace(c.Encoding.Codec)
	if c.Encoding.Codec == "" {
		c.Encoding.Codec = defaultCodec
	}
	c.Encoding.Preset = strings.ToLower(strings.TrimSpace(c.Encoding.Preset))
	c.Encoding.PixelFormat = strings.TrimSpace(c.Encoding.PixelFormat)
	if c.Encoding.PixelFormat == "" {
		c.Encoding.PixelFormat = defaultPixelFormat
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
