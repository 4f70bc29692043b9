package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"graphion/internal/config"
	"graphion/internal/deps"
	"graphion/internal/services/gemini"
)

// CheckGemini verifies that the API key is accepted and the model exists.
// It uses a 30-second timeout and a single attempt.
func CheckGemini(ctx context.Context, cfg *config.Config, opts ...gemini.Option) Result {
	const name = "Gemini API"
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := gemini.NewClient(checkCtx, gemini.ConfigFromApp(cfg), opts...)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeGeminiError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("model %s reachable", client.Model())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the encoder and renderer binaries. The daemon's
// status endpoint and the doctor command share this list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return []deps.Status{
		deps.CheckFFmpegEncoder(checkCtx, cfg.Encoding.FFmpegBinary, cfg.Encoding.Codec),
		deps.CheckBrowser(cfg.Render.BrowserBin),
	}
}

func summarizeGeminiError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (Gemini API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (Gemini API unreachable)"
	}
	return err.Error()
}
