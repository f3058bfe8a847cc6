package procexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	r := DefaultRunner{}
	out, err := r.Run(context.Background(), t.TempDir(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunFullCapturesStderrAndExitCodeOnFailure(t *testing.T) {
	r := DefaultRunner{}
	res, err := r.RunFull(context.Background(), t.TempDir(), "sh", "-c", "echo oops 1>&2; exit 3")
	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "oops")
}

func TestRunFullZeroExitCodeOnSuccess(t *testing.T) {
	r := DefaultRunner{}
	res, err := r.RunFull(context.Background(), t.TempDir(), "true")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunFullMapsDeadlineExceededToExitTimeout(t *testing.T) {
	r := DefaultRunner{Timeout: 10 * time.Millisecond}
	res, err := r.RunFull(context.Background(), t.TempDir(), "sleep", "5")
	require.Error(t, err)
	assert.Equal(t, ExitTimeout, res.ExitCode)
}

func TestRunFullMapsSignalKillToExitKilled(t *testing.T) {
	r := DefaultRunner{}
	res, err := r.RunFull(context.Background(), t.TempDir(), "sh", "-c", "kill -9 $$")
	require.Error(t, err)
	assert.Equal(t, ExitKilled, res.ExitCode)
}

func TestRunReturnsErrorForMissingBinary(t *testing.T) {
	r := DefaultRunner{}
	_, err := r.Run(context.Background(), t.TempDir(), "definitely-not-a-real-binary-xyz")
	assert.Error(t, err)
}

func TestRunRespectsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := DefaultRunner{}
	out, err := r.Run(context.Background(), dir, "pwd")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
}
