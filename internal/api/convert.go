package api

import (
	"time"

	"graphion/internal/config"
	"graphion/internal/deps"
	"graphion/internal/pipeline"
)

// FromResult converts a pipeline result into the /generate response.
func FromResult(res pipeline.Result) GenerateResponse {
	return GenerateResponse{
		VideoURL:  res.VideoPath,
		SessionID: res.SessionID,
		Frames:    res.Frames,
		SizeBytes: res.Artifact.SizeBytes,
		ElapsedMS: res.Duration.Milliseconds(),
	}
}

// FromDependencies converts dependency checks, preserving order.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	return out
}

// FromConfig fills the configuration-derived part of a status payload.
func FromConfig(cfg *config.Config) ServerStatus {
	if cfg == nil {
		return ServerStatus{Dependencies: []DependencyStatus{}}
	}
	return ServerStatus{
		WorkDir:   cfg.Paths.WorkDir,
		PublicDir: cfg.Paths.PublicDir,
		Model:     cfg.Gemini.Model,
		Render: RenderProfile{
			Width:           cfg.Render.Width,
			Height:          cfg.Render.Height,
			FPS:             cfg.Render.FPS,
			DurationSeconds: cfg.Render.DurationSeconds,
			Frames:          cfg.FrameCount(),
			ImageFormat:     cfg.Render.ImageFormat,
			Pacing:          cfg.Render.Pacing,
			Codec:           cfg.Encoding.Codec,
			CRF:             cfg.Encoding.CRF,
		},
		Dependencies: []DependencyStatus{},
	}
}

// FormatTime renders t for API payloads. The zero time renders empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
