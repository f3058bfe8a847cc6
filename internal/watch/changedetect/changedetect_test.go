package changedetect

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scout/internal/artifact"
	"scout/internal/cachepath"
	"scout/internal/git"
	"scout/internal/session"
	"scout/internal/watch/store"
)

type fakeRunner struct {
	lsRemoteHead  string
	revParseOut   string
	diffText      string
	nameStatusOut string
	numstatOut    string
}

func hasAll(args []string, want ...string) bool {
	for _, w := range want {
		found := false
		for _, a := range args {
			if a == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	switch {
	case hasAll(args, "ls-remote"):
		for _, a := range args {
			if strings.Contains(a, "unreachable") {
				return "", fmt.Errorf("could not resolve host")
			}
		}
		return f.lsRemoteHead + "\tHEAD\n", nil
	case hasAll(args, "rev-parse"):
		return f.revParseOut, nil
	case hasAll(args, "--name-status"):
		return f.nameStatusOut, nil
	case hasAll(args, "--numstat"):
		return f.numstatOut, nil
	case hasAll(args, "diff"):
		return f.diffText, nil
	default:
		return "", nil
	}
}

func setupStore(t *testing.T) (*store.Store, store.Repo) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "watch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo, err := s.UpsertRepo(context.Background(), "owner/name", "https://example.com/owner/name.git", "main", "")
	require.NoError(t, err)
	return s, repo
}

// TestRunOnceSeedsWhenNoSnapshotExists is spec.md §8 end-to-end
// scenario 5 (watch-seeding): the first pass over a freshly tracked
// entry records a baseline snapshot and performs no session build.
func TestRunOnceSeedsWhenNoSnapshotExists(t *testing.T) {
	ctx := context.Background()
	s, repo := setupStore(t)
	_, err := s.UpsertTracked(ctx, repo.ID, artifact.KindSkill, nil, true, 24)
	require.NoError(t, err)

	runner := &fakeRunner{lsRemoteHead: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	g := git.New(runner)
	resolver := cachepath.Default{BaseDir: t.TempDir()}

	results, err := RunOnce(ctx, s, g, resolver, Config{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Seeded)
	assert.Nil(t, results[0].Change)
	assert.Nil(t, results[0].Session)
	assert.NoError(t, results[0].Err)

	snap, ok, err := s.LatestSnapshot(ctx, repo.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", snap.HeadCommitID)
}

func TestRunOnceSinceLastSkipsSeeding(t *testing.T) {
	ctx := context.Background()
	s, repo := setupStore(t)
	_, err := s.UpsertTracked(ctx, repo.ID, artifact.KindSkill, nil, true, 24)
	require.NoError(t, err)

	runner := &fakeRunner{lsRemoteHead: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	g := git.New(runner)
	resolver := cachepath.Default{BaseDir: t.TempDir()}

	results, err := RunOnce(ctx, s, g, resolver, Config{SinceLast: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].NoOp)
	assert.False(t, results[0].Seeded)

	_, ok, err := s.LatestSnapshot(ctx, repo.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunOnceNoOpWhenHeadUnchanged(t *testing.T) {
	ctx := context.Background()
	s, repo := setupStore(t)
	_, err := s.UpsertTracked(ctx, repo.ID, artifact.KindSkill, nil, true, 24)
	require.NoError(t, err)
	_, err = s.AppendSnapshot(ctx, repo.ID, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.NoError(t, err)

	runner := &fakeRunner{lsRemoteHead: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	g := git.New(runner)
	resolver := cachepath.Default{BaseDir: t.TempDir()}

	results, err := RunOnce(ctx, s, g, resolver, Config{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].NoOp)
}

// TestRunOnceBuildsSessionOnHeadChange is spec.md §8 end-to-end
// scenario 4 (watch-change-issues-session): a tracked entry whose
// remote head has moved since the last snapshot yields a Change row,
// a Session row, and an advanced Snapshot.
func TestRunOnceBuildsSessionOnHeadChange(t *testing.T) {
	ctx := context.Background()
	s, repo := setupStore(t)
	_, err := s.UpsertTracked(ctx, repo.ID, artifact.KindSkill, nil, true, 24)
	require.NoError(t, err)
	_, err = s.AppendSnapshot(ctx, repo.ID, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.NoError(t, err)

	diff := "diff --git a/SKILL.md b/SKILL.md\n--- a/SKILL.md\n+++ b/SKILL.md\n@@ -1 +1 @@\n-old\n+new\n"
	runner := &fakeRunner{
		lsRemoteHead:  "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		revParseOut:   "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		diffText:      diff,
		nameStatusOut: "M\tSKILL.md\n",
		numstatOut:    "1\t1\tSKILL.md\n",
	}
	g := git.New(runner)
	resolver := cachepath.Default{BaseDir: t.TempDir()}

	results, err := RunOnce(ctx, s, g, resolver, Config{Budgets: session.Budgets{TokenBudget: 10000, MaxFilesPerChunk: 10}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	res := results[0]
	require.NoError(t, res.Err)
	require.NotNil(t, res.Change)
	require.NotNil(t, res.Session)
	assert.Equal(t, artifact.SessionPending, res.Session.Status)
	assert.True(t, strings.Contains(res.Session.SessionDir, "owner_name"))

	snap, ok, err := s.LatestSnapshot(ctx, repo.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", snap.HeadCommitID)
}

func TestRunOnceIsolatesPerEntryFailure(t *testing.T) {
	ctx := context.Background()
	s, repo := setupStore(t)
	_, err := s.UpsertTracked(ctx, repo.ID, artifact.KindSkill, nil, true, 24)
	require.NoError(t, err)

	badRepo, err := s.UpsertRepo(ctx, "owner/bad", "https://unreachable.example.com/owner/bad.git", "main", "")
	require.NoError(t, err)
	_, err = s.UpsertTracked(ctx, badRepo.ID, artifact.KindHook, nil, true, 24)
	require.NoError(t, err)

	runner := &fakeRunner{lsRemoteHead: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	g := git.New(runner)
	resolver := cachepath.Default{BaseDir: t.TempDir()}

	results, err := RunOnce(ctx, s, g, resolver, Config{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	var sawSuccess, sawFailure bool
	for _, r := range results {
		if r.Err != nil {
			sawFailure = true
		} else {
			sawSuccess = true
		}
	}
	assert.True(t, sawSuccess, "the healthy entry should still succeed")
	assert.True(t, sawFailure, "the unreachable entry should fail without aborting the batch")
}
