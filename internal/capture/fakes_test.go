package capture

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeLauncher struct {
	launchErr error
	browser   *fakeBrowser
	launches  int
}

func (l *fakeLauncher) Launch(context.Context) (Browser, error) {
	l.launches++
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	return l.browser, nil
}

type fakeBrowser struct {
	page     *fakePage
	pageErr  error
	viewport Viewport
	closed   bool
}

func (b *fakeBrowser) NewPage(_ context.Context, v Viewport) (Page, error) {
	b.viewport = v
	if b.pageErr != nil {
		return nil, b.pageErr
	}
	return b.page, nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

type fakePage struct {
	clock     *fakeClock
	latency   []time.Duration
	loadErr   error
	failAt    int
	shots     int
	loadedURL string
	closed    bool
	onShot    func(i int)
}

var errShot = errors.New("target closed")

func (p *fakePage) Load(_ context.Context, url string, _, _ time.Duration) error {
	p.loadedURL = url
	return p.loadErr
}

func (p *fakePage) Screenshot(ctx context.Context, spec ImageSpec) ([]byte, error) {
	i := p.shots
	p.shots++
	if p.onShot != nil {
		p.onShot(i)
	}
	if p.failAt > 0 && i == p.failAt {
		return nil, errShot
	}
	if p.clock != nil && len(p.latency) > 0 {
		p.clock.advance(p.latency[i%len(p.latency)])
	}
	return []byte("RIFF" + spec.Format), ctx.Err()
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}
