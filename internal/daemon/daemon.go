package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"graphion/internal/api"
	"graphion/internal/config"
	"graphion/internal/deps"
	"graphion/internal/logging"
	"graphion/internal/preflight"
	"graphion/internal/server"
)

const shutdownTimeout = 10 * time.Second

// Daemon serves the HTTP API and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	router *server.Server

	lockPath string
	lock     *flock.Flock

	mu        sync.Mutex
	listener  net.Listener
	httpSrv   *http.Server
	deps      []deps.Status
	startedAt time.Time
	done      chan struct{}
	serveErr  error

	running atomic.Bool
}

// New constructs a daemon. runner executes generation sessions.
func New(cfg *config.Config, runner server.Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.router = server.New(cfg, runner, d.Status, logger)
	return d, nil
}

// Start acquires the lock, probes dependencies, and begins serving. Serving
// stops when ctx is cancelled or Stop is called.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another graphiond instance is already using %s", d.cfg.Paths.WorkDir)
	}

	listener, err := net.Listen("tcp", d.cfg.Paths.APIBind)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}

	statuses := preflight.CheckSystemDeps(ctx, d.cfg)
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			logging.WarnWithContext(d.logger, "dependency unavailable", "dependency_missing",
				logging.String("dependency", status.Name),
				logging.String("detail", status.Detail),
				logging.String(logging.FieldErrorHint, "run graphion doctor"),
				logging.String(logging.FieldImpact, "generation requests will fail"),
			)
		}
	}

	srv := &http.Server{
		Handler:           d.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	d.mu.Lock()
	d.listener = listener
	d.httpSrv = srv
	d.deps = statuses
	d.startedAt = time.Now()
	d.done = make(chan struct{})
	d.serveErr = nil
	done := d.done
	d.mu.Unlock()
	d.running.Store(true)

	go func() {
		defer close(done)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("api server error", logging.Error(err))
			d.mu.Lock()
			d.serveErr = err
			d.mu.Unlock()
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			d.Stop()
		case <-done:
		}
	}()

	d.logger.Info("graphion daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("address", listener.Addr().String()),
		logging.String("lock", d.lockPath),
		logging.String("public_dir", d.cfg.Paths.PublicDir),
	)
	return nil
}

// Addr returns the bound listen address, or "" when not running.
func (d *Daemon) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Wait blocks until serving ends and returns any serve error.
func (d *Daemon) Wait() error {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.serveErr
}

// Stop drains in-flight requests and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.CompareAndSwap(true, false) {
		return
	}
	d.mu.Lock()
	srv := d.httpSrv
	d.mu.Unlock()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("api server shutdown incomplete", logging.Error(err))
		}
		cancel()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}

	d.mu.Lock()
	d.listener = nil
	d.httpSrv = nil
	d.mu.Unlock()
	d.logger.Info("graphion daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) api.ServerStatus {
	status := api.FromConfig(d.cfg)
	status.Running = d.running.Load()
	status.PID = os.Getpid()
	status.LockFilePath = d.lockPath

	d.mu.Lock()
	defer d.mu.Unlock()
	if status.Running {
		status.StartedAt = api.FormatTime(d.startedAt)
	}
	status.Dependencies = api.FromDependencies(d.deps)
	return status
}
