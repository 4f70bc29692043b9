package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphion/internal/config"
)

func TestBestEffortWaitsRemainderOfInterval(t *testing.T) {
	clock := newFakeClock()
	p := newPacer(config.PacingBestEffort, 25, clock)
	p.begin()

	shot := clock.Now()
	clock.advance(10 * time.Millisecond)
	require.NoError(t, p.wait(context.Background(), 0, shot))
	assert.Equal(t, []time.Duration{30 * time.Millisecond}, clock.sleeps)

	// A capture slower than the interval is not compensated later.
	shot = clock.Now()
	clock.advance(55 * time.Millisecond)
	require.NoError(t, p.wait(context.Background(), 1, shot))
	shot = clock.Now()
	clock.advance(10 * time.Millisecond)
	require.NoError(t, p.wait(context.Background(), 2, shot))
	assert.Equal(t, []time.Duration{30 * time.Millisecond, 30 * time.Millisecond}, clock.sleeps)
}

func TestWallClockCatchesUp(t *testing.T) {
	clock := newFakeClock()
	p := newPacer(config.PacingWallClock, 25, clock)
	p.begin()

	// Frame 0 takes 100ms: frames 1 and 2 are already due, so no waits.
	shot := clock.Now()
	clock.advance(100 * time.Millisecond)
	require.NoError(t, p.wait(context.Background(), 0, shot))
	shot = clock.Now()
	clock.advance(time.Millisecond)
	require.NoError(t, p.wait(context.Background(), 1, shot))
	assert.Empty(t, clock.sleeps)

	// Frame 3 is due at 120ms; frame 2 finishes at 102ms.
	shot = clock.Now()
	clock.advance(time.Millisecond)
	require.NoError(t, p.wait(context.Background(), 2, shot))
	assert.Equal(t, []time.Duration{18 * time.Millisecond}, clock.sleeps)

	// Back on schedule: frame 4 is due at 160ms.
	shot = clock.Now()
	clock.advance(time.Millisecond)
	require.NoError(t, p.wait(context.Background(), 3, shot))
	assert.Equal(t, []time.Duration{18 * time.Millisecond, 39 * time.Millisecond}, clock.sleeps)
}

func TestEngineBestEffortTimeline(t *testing.T) {
	clock := newFakeClock()
	page := &fakePage{clock: clock, latency: []time.Duration{5 * time.Millisecond}}
	cfg := defaultTestConfig()
	cfg.FPS = 10
	cfg.DurationSeconds = 1
	engine := NewEngine(cfg, &fakeLauncher{browser: &fakeBrowser{page: page}}, nil, WithClock(clock))

	set, err := engine.Capture(context.Background(), "<html></html>", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 10, set.Count)
	require.Len(t, clock.sleeps, 9, "no wait after the final frame")
	for _, d := range clock.sleeps {
		assert.Equal(t, 95*time.Millisecond, d)
	}
}

func TestEngineWallClockTimeline(t *testing.T) {
	clock := newFakeClock()
	latency := []time.Duration{250 * time.Millisecond}
	for i := 1; i < 10; i++ {
		latency = append(latency, 5*time.Millisecond)
	}
	page := &fakePage{clock: clock, latency: latency}
	cfg := defaultTestConfig()
	cfg.FPS = 10
	cfg.DurationSeconds = 1
	cfg.Pacing = config.PacingWallClock
	engine := NewEngine(cfg, &fakeLauncher{browser: &fakeBrowser{page: page}}, nil, WithClock(clock))

	set, err := engine.Capture(context.Background(), "<html></html>", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 10, set.Count)

	// Frame 0 overruns into frame 2's slot; frames 1 and 2 run back to back,
	// then the schedule resumes on the 100ms grid.
	want := []time.Duration{40 * time.Millisecond}
	for i := 3; i <= 8; i++ {
		want = append(want, 95*time.Millisecond)
	}
	assert.Equal(t, want, clock.sleeps)
}

func TestPacerHonoursCancellation(t *testing.T) {
	clock := newFakeClock()
	p := newPacer(config.PacingBestEffort, 30, clock)
	p.begin()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.wait(ctx, 0, clock.Now()), context.Canceled)
}
