package capture

import (
	"context"
	"time"
)

// Viewport is the page size in CSS pixels at device scale factor 1.
type Viewport struct {
	Width  int
	Height int
}

// ImageSpec selects the screenshot encoding.
type ImageSpec struct {
	Format  string
	Quality int
}

// Launcher starts an isolated browser instance.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser owns one browser process and its profile.
type Browser interface {
	NewPage(ctx context.Context, viewport Viewport) (Page, error)
	// Close terminates the process and removes its profile. It must be safe
	// to call after a failed NewPage.
	Close() error
}

// Page is a single tab.
type Page interface {
	// Load navigates to url and returns once the network has been idle for
	// idle, or fails after timeout.
	Load(ctx context.Context, url string, idle, timeout time.Duration) error
	Screenshot(ctx context.Context, spec ImageSpec) ([]byte, error)
	Close() error
}
