//go:build unix

package cmdrun_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphion/internal/cmdrun"
)

func script(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecSuccess(t *testing.T) {
	bin := script(t, `echo "progress" >&2; exit 0`)
	res, err := cmdrun.Exec{}.Run(context.Background(), bin, "-y")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stderr, "progress")
}

func TestExecNonZeroExitCarriesStderr(t *testing.T) {
	bin := script(t, `echo "Unknown encoder 'libx999'" >&2; exit 3`)
	_, err := cmdrun.Exec{}.Run(context.Background(), bin)
	require.Error(t, err)

	var exitErr *cmdrun.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, "tool", exitErr.Command)
	assert.Contains(t, err.Error(), "Unknown encoder 'libx999'")
	assert.Contains(t, err.Error(), "exited with status 3")
}

func TestExecMissingBinary(t *testing.T) {
	_, err := cmdrun.Exec{}.Run(context.Background(), filepath.Join(t.TempDir(), "absent"))
	var exitErr *cmdrun.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, -1, exitErr.ExitCode)
}

func TestExecStderrTail(t *testing.T) {
	bin := script(t, `i=0; while [ $i -lt 200 ]; do echo "line $i" >&2; i=$((i+1)); done; exit 1`)
	_, err := cmdrun.Exec{StderrLimit: 64}.Run(context.Background(), bin)
	var exitErr *cmdrun.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.True(t, strings.HasPrefix(exitErr.Stderr, "..."))
	assert.Contains(t, exitErr.Stderr, "line 199")
	assert.LessOrEqual(t, len(exitErr.Stderr), 64+3)
}

func TestExecCancelKillsProcessGroup(t *testing.T) {
	bin := script(t, `sleep 30 & sleep 30; wait`)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := cmdrun.Exec{KillGrace: time.Second}.Run(ctx, bin)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunnerFunc(t *testing.T) {
	var got []string
	runner := cmdrun.RunnerFunc(func(_ context.Context, name string, args ...string) (cmdrun.Result, error) {
		got = append([]string{name}, args...)
		return cmdrun.Result{}, nil
	})
	_, err := runner.Run(context.Background(), "ffmpeg", "-y")
	require.NoError(t, err)
	assert.Equal(t, []string{"ffmpeg", "-y"}, got)
}
