package review

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scout/internal/procexec"
)

type fakeFullRunner struct {
	result procexec.Result
	err    error
	called bool
}

func (f *fakeFullRunner) RunFull(ctx context.Context, dir, name string, args ...string) (procexec.Result, error) {
	f.called = true
	return f.result, f.err
}

func validSessionDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "REVIEW_INSTRUCTIONS.md"), []byte("go"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "review_context.json"), []byte("{}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "repo"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "OUTPUT"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diff.patch"), []byte("diff"), 0o644))
	return dir
}

func TestValidateAcceptsCompleteSession(t *testing.T) {
	assert.NoError(t, Validate(validSessionDir(t)))
}

func TestValidateAcceptsChunkedSession(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "REVIEW_INSTRUCTIONS.md"), []byte("go"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "review_context.json"), []byte("{}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "repo"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "OUTPUT"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "chunks"), 0o755))
	assert.NoError(t, Validate(dir))
}

// TestValidateRejectsSessionMissingInstructions is spec.md §8 scenario
// 6: a session directory missing REVIEW_INSTRUCTIONS.md fails
// validation, naming the missing file, without invoking the reviewer.
func TestValidateRejectsSessionMissingInstructions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "review_context.json"), []byte("{}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "repo"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "OUTPUT"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diff.patch"), []byte("diff"), 0o644))

	err := Validate(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionInvalid)
	assert.Contains(t, err.Error(), "REVIEW_INSTRUCTIONS.md")
}

func TestValidateRejectsSessionMissingDiffAndChunks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "REVIEW_INSTRUCTIONS.md"), []byte("go"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "review_context.json"), []byte("{}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "repo"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "OUTPUT"), 0o755))

	err := Validate(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

// TestLaunchFailsWithoutInvokingReviewerOnInvalidSession continues
// scenario 6: Launch must surface the same validation failure and
// never call the reviewer subprocess.
func TestLaunchFailsWithoutInvokingReviewerOnInvalidSession(t *testing.T) {
	dir := t.TempDir() // empty: missing everything

	runner := &fakeFullRunner{result: procexec.Result{ExitCode: 0}}
	_, err := Launch(context.Background(), runner, dir, Options{ReviewerCommand: "echo"}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionInvalid)
	assert.False(t, runner.called)
}

func TestLaunchFailsWhenReviewerUnavailable(t *testing.T) {
	dir := validSessionDir(t)

	runner := &fakeFullRunner{}
	_, err := Launch(context.Background(), runner, dir, Options{ReviewerCommand: "definitely-not-a-real-binary-xyz"}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReviewerUnavailable)
	assert.False(t, runner.called)
}

func TestLaunchSkipPreflightBypassesChecksAndInvokesReviewer(t *testing.T) {
	dir := t.TempDir() // would fail Validate, but SkipPreflight bypasses it

	runner := &fakeFullRunner{result: procexec.Result{ExitCode: 0}}
	res, err := Launch(context.Background(), runner, dir, Options{ReviewerCommand: "definitely-not-a-real-binary-xyz", SkipPreflight: true}, nil)

	require.NoError(t, err)
	assert.True(t, runner.called)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
}

func TestLaunchClassifiesSuccess(t *testing.T) {
	dir := validSessionDir(t)
	runner := &fakeFullRunner{result: procexec.Result{ExitCode: 0, Stdout: "ok"}}

	var gotOutcome Outcome
	var gotCode int
	transition := func(o Outcome, code int) error {
		gotOutcome, gotCode = o, code
		return nil
	}

	res, err := Launch(context.Background(), runner, dir, Options{ReviewerCommand: "echo"}, transition)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, OutcomeSuccess, gotOutcome)
	assert.Equal(t, 0, gotCode)
}

func TestLaunchClassifiesTimeout(t *testing.T) {
	dir := validSessionDir(t)
	runner := &fakeFullRunner{
		result: procexec.Result{ExitCode: procexec.ExitTimeout},
		err:    context.DeadlineExceeded,
	}

	res, err := Launch(context.Background(), runner, dir, Options{ReviewerCommand: "echo"}, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeTimeout, res.Outcome)
	assert.Equal(t, procexec.ExitTimeout, res.ExitCode)
}

func TestLaunchClassifiesSignal(t *testing.T) {
	dir := validSessionDir(t)
	runner := &fakeFullRunner{
		result: procexec.Result{ExitCode: procexec.ExitKilled},
		err:    assert.AnError,
	}

	res, err := Launch(context.Background(), runner, dir, Options{ReviewerCommand: "echo"}, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSignal, res.Outcome)
}

func TestLaunchClassifiesFailure(t *testing.T) {
	dir := validSessionDir(t)
	runner := &fakeFullRunner{
		result: procexec.Result{ExitCode: 1},
		err:    assert.AnError,
	}

	res, err := Launch(context.Background(), runner, dir, Options{ReviewerCommand: "echo"}, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Equal(t, 1, res.ExitCode)
}

func TestLaunchPropagatesTransitionError(t *testing.T) {
	dir := validSessionDir(t)
	runner := &fakeFullRunner{result: procexec.Result{ExitCode: 0}}

	_, err := Launch(context.Background(), runner, dir, Options{ReviewerCommand: "echo"}, func(Outcome, int) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAvailableFalseForUnknownBinary(t *testing.T) {
	assert.False(t, Available("definitely-not-a-real-binary-xyz"))
}
