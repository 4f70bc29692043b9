package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"graphion/internal/config"
	"graphion/internal/logging"
)

// RodLauncher launches a local headless Chromium through go-rod.
type RodLauncher struct {
	// Bin is an explicit browser path; empty uses the launcher's lookup
	// (system browser, else a downloaded one).
	Bin       string
	NoSandbox bool
	Logger    *slog.Logger
}

// Launch starts the browser process and connects to it.
func (r RodLauncher) Launch(ctx context.Context) (Browser, error) {
	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(r.NoSandbox).
		Set("disable-gpu").
		Set("hide-scrollbars").
		Set("mute-audio").
		Set("disable-extensions")
	if r.Bin != "" {
		l = l.Bin(r.Bin)
	}

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	logging.NewComponentLogger(r.Logger, "capture").Debug("browser launched",
		logging.Int("pid", l.PID()),
	)
	return &rodBrowser{launcher: l, browser: b}, nil
}

type rodBrowser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func (b *rodBrowser) NewPage(ctx context.Context, viewport Viewport) (Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("browser: new page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewport.Width,
		Height:            viewport.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("browser: set viewport: %w", err)
	}
	return &rodPage{page: page}, nil
}

// Close asks the browser to exit, kills it if it lingers, and removes the
// profile directory.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	return err
}

type rodPage struct {
	page *rod.Page
}

// idleExcludes keeps long-lived connections from holding the idle wait open.
var idleExcludes = []proto.NetworkResourceType{
	proto.NetworkResourceTypeWebSocket,
	proto.NetworkResourceTypeEventSource,
}

func (p *rodPage) Load(ctx context.Context, url string, idle, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	nav := p.page.Context(navCtx)
	waitIdle := nav.WaitRequestIdle(idle, nil, nil, idleExcludes)
	if err := nav.Navigate(url); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	if err := nav.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	waitIdle()
	if err := navCtx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("network did not go idle within %s", timeout)
		}
		return err
	}
	return nil
}

func (p *rodPage) Screenshot(ctx context.Context, spec ImageSpec) ([]byte, error) {
	req := &proto.PageCaptureScreenshot{Format: screenshotFormat(spec.Format)}
	if req.Format != proto.PageCaptureScreenshotFormatPng {
		quality := spec.Quality
		req.Quality = &quality
	}
	return p.page.Context(ctx).Screenshot(false, req)
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

func screenshotFormat(format string) proto.PageCaptureScreenshotFormat {
	switch format {
	case config.ImageFormatJPEG:
		return proto.PageCaptureScreenshotFormatJpeg
	case config.ImageFormatPNG:
		return proto.PageCaptureScreenshotFormatPng
	default:
		return proto.PageCaptureScreenshotFormatWebp
	}
}
