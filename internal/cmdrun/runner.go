package cmdrun

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultStderrLimit is the amount of trailing diagnostic output kept per run.
const DefaultStderrLimit = 16 << 10

// Runner executes a command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(ctx context.Context, name string, args ...string) (Result, error)

func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return f(ctx, name, args...)
}

// Result describes a finished process.
type Result struct {
	ExitCode int
	Stderr   string
	Duration time.Duration
}

// ExitError reports a process that could not start or exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	var b strings.Builder
	b.WriteString(e.Command)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " exited with status %d", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Exec runs commands with os/exec.
type Exec struct {
	// StderrLimit caps retained stderr bytes; zero means DefaultStderrLimit.
	StderrLimit int
	// KillGrace is how long to wait for pipes to drain after a kill.
	KillGrace time.Duration
}

// Run starts name with args and waits for it. Stdout is discarded.
func (e Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	limit := e.StderrLimit
	if limit <= 0 {
		limit = DefaultStderrLimit
	}
	stderr := &tailBuffer{limit: limit}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = stderr
	cmd.WaitDelay = e.KillGrace
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = 5 * time.Second
	}
	configureProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	res := Result{ExitCode: 0, Stderr: stderr.String(), Duration: time.Since(start)}
	if err == nil {
		return res, nil
	}

	res.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return res, &ExitError{
		Command:  commandLabel(name),
		ExitCode: res.ExitCode,
		Stderr:   res.Stderr,
		Err:      err,
	}
}

func commandLabel(name string) string {
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit     int
	buf       []byte
	truncated bool
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
		t.truncated = true
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	if t.truncated {
		return "..." + string(t.buf)
	}
	return string(t.buf)
}
