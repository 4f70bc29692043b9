package preflight

import (
	"context"

	"graphion/internal/config"
	"graphion/internal/deps"
	"graphion/internal/services/gemini"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every preflight check for cfg. Gemini options are passed
// through to the client (tests use them to redirect the transport).
func RunAll(ctx context.Context, cfg *config.Config, opts ...gemini.Option) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Public directory", cfg.Paths.PublicDir),
		CheckDirectoryAccess("Videos directory", cfg.VideosDir()),
	}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, FromDependency(status))
	}
	results = append(results, CheckGemini(ctx, cfg, opts...))
	return results
}

// FromDependency adapts a binary check to a preflight result.
func FromDependency(status deps.Status) Result {
	detail := status.Detail
	if status.Available && detail == "" {
		detail = status.Command
	}
	return Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
		Detail:   detail,
	}
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
