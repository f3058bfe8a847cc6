package git

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out       string
	err       error
	lastArgs  []string
	lastDir   string
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	f.lastDir = dir
	f.lastArgs = args
	return f.out, f.err
}

func TestCloneBuildsExpectedArgs(t *testing.T) {
	runner := &fakeRunner{}
	g := New(runner)
	require.NoError(t, g.Clone(context.Background(), CloneOptions{URL: "https://example.com/o/n", Dest: "/dst", Depth: 1, Reference: "main"}))

	args := strings.Join(runner.lastArgs, " ")
	assert.Contains(t, args, "clone")
	assert.Contains(t, args, "--depth 1")
	assert.Contains(t, args, "--branch main")
	assert.Contains(t, args, "core.hooksPath=/dev/null")
	assert.Contains(t, args, "https://example.com/o/n /dst")
}

func TestCloneWrapsFailure(t *testing.T) {
	runner := &fakeRunner{err: assert.AnError}
	g := New(runner)
	err := g.Clone(context.Background(), CloneOptions{URL: "https://example.com/o/n", Dest: "/dst"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestLsRemoteHeadParsesFirstField(t *testing.T) {
	runner := &fakeRunner{out: "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef\tHEAD\n"}
	g := New(runner)
	head, err := g.LsRemoteHead(context.Background(), "https://example.com/o/n")
	require.NoError(t, err)
	assert.Equal(t, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", head)
}

func TestLsRemoteHeadErrorsOnEmptyResponse(t *testing.T) {
	runner := &fakeRunner{out: ""}
	g := New(runner)
	_, err := g.LsRemoteHead(context.Background(), "https://example.com/o/n")
	require.Error(t, err)
}

func TestRevParseTrimsWhitespace(t *testing.T) {
	runner := &fakeRunner{out: "  abc123  \n"}
	g := New(runner)
	out, err := g.RevParse(context.Background(), "/repo", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "abc123", out)
}

func TestDiffOptionsPathspecArgsScopedAndExcluded(t *testing.T) {
	opts := DiffOptions{Paths: []string{"src"}, Excludes: []string{"go.sum"}}
	args := opts.pathspecArgs()
	assert.Equal(t, []string{"--", "src", ":(exclude)go.sum"}, args)
}

func TestDiffOptionsPathspecArgsUnscopedUsesDot(t *testing.T) {
	opts := DiffOptions{Excludes: []string{"go.sum"}}
	args := opts.pathspecArgs()
	assert.Equal(t, []string{"--", ".", ":(exclude)go.sum"}, args)
}

func TestDiffOptionsPathspecArgsEmptyWhenUnset(t *testing.T) {
	opts := DiffOptions{}
	assert.Empty(t, opts.pathspecArgs())
}

func TestParseNameStatusParsesModifyAndRename(t *testing.T) {
	out := "M\ta.go\nR90\told.go\tnew.go\n"
	changes := parseNameStatus(out)
	require.Len(t, changes, 2)
	assert.Equal(t, FileChange{Status: "M", Path: "a.go"}, changes[0])
	assert.Equal(t, FileChange{Status: "R90", OldPath: "old.go", Path: "new.go", Similarity: 90}, changes[1])
}

func TestParseNameStatusSkipsBlankLines(t *testing.T) {
	changes := parseNameStatus("\n\nM\ta.go\n\n")
	require.Len(t, changes, 1)
	assert.Equal(t, "a.go", changes[0].Path)
}

func TestDiffStatAggregatesNumstat(t *testing.T) {
	runner := &fakeRunner{out: "3\t1\ta.go\n5\t0\tb.go\n"}
	g := New(runner)
	stats, err := g.DiffStat(context.Background(), "/repo", DiffOptions{From: "a", To: "b"})
	require.NoError(t, err)
	assert.Equal(t, DiffStats{FilesChanged: 2, Insertions: 8, Deletions: 1}, stats)
}

func TestWorktreeAddAndRemoveBuildExpectedArgs(t *testing.T) {
	runner := &fakeRunner{}
	g := New(runner)

	require.NoError(t, g.WorktreeAdd(context.Background(), "/repo", "/repo/session/repo", "abc123"))
	assert.Contains(t, strings.Join(runner.lastArgs, " "), "worktree add --detach /repo/session/repo abc123")

	require.NoError(t, g.WorktreeRemove(context.Background(), "/repo", "/repo/session/repo"))
	assert.Contains(t, strings.Join(runner.lastArgs, " "), "worktree remove --force /repo/session/repo")
}
