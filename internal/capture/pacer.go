package capture

import (
	"context"
	"time"

	"graphion/internal/config"
)

// Clock abstracts time so pacing can be tested without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// pacer spaces captures one frame interval apart.
//
// best_effort: after frame i is captured, wait interval minus the time the
// capture took. Slow captures stretch the animation timeline.
//
// wall_clock: frame i+1 is due at start + (i+1)*interval. When captures run
// behind, the wait is skipped; no frame is ever dropped.
type pacer struct {
	mode     string
	interval time.Duration
	clock    Clock
	start    time.Time
}

func newPacer(mode string, fps int, clock Clock) *pacer {
	return &pacer{
		mode:     mode,
		interval: time.Second / time.Duration(fps),
		clock:    clock,
	}
}

func (p *pacer) begin() {
	p.start = p.clock.Now()
}

// wait blocks after frame index has been captured. captureStart is when that
// capture began.
func (p *pacer) wait(ctx context.Context, index int, captureStart time.Time) error {
	now := p.clock.Now()
	var remaining time.Duration
	if p.mode == config.PacingWallClock {
		due := p.start.Add(time.Duration(index+1) * p.interval)
		remaining = due.Sub(now)
	} else {
		remaining = p.interval - now.Sub(captureStart)
	}
	if remaining <= 0 {
		return ctx.Err()
	}
	return p.clock.Sleep(ctx, remaining)
}
