// Package changedetect implements the Change Detector (spec.md
// §4.13): a one-shot driver that, for every enabled tracked entry,
// seeds or advances its Snapshot, and on a genuine head change hands
// off to the Session Builder, isolating per-entry failure from the
// batch.
//
// Grounded on the batch-with-per-item-isolation shape every watch-style
// stage in this pipeline shares (Discovery Engine's per-lane loop,
// Clone Engine's per-candidate loop): collect results, never abort the
// whole run because one entry failed.
package changedetect

import (
	"context"
	"fmt"

	"scout/internal/artifact"
	"scout/internal/cachepath"
	"scout/internal/git"
	"scout/internal/session"
	"scout/internal/watch/store"
)

// Config tunes one RunOnce pass.
type Config struct {
	SinceLast     bool // when set, an entry with no snapshot is a no-op and is not seeded
	AutoReview    bool
	Budgets       session.Budgets
	ReviewerSkill string
	// LaunchReview, when AutoReview is set and non-nil, is invoked on
	// every session created this pass. Kept as a callback rather than
	// an internal/review import so changedetect has no compile-time
	// dependency on how reviews are launched.
	LaunchReview func(ctx context.Context, sessionDir string) (exitCode int, err error)
}

// EntryResult is the per-tracked-entry outcome (spec.md §4.13 failure
// policy: "surfaced in the result for that entry only").
type EntryResult struct {
	RepoFullName string
	Kind         artifact.Kind
	Seeded       bool
	NoOp         bool
	Change       *store.Change
	Session      *store.Session
	Err          error
}

// RunOnce must be called while the caller already holds the watch
// lock (spec.md §4.13: "for each enabled tracked entry, within the
// lock").
func RunOnce(ctx context.Context, st *store.Store, g *git.Git, resolver cachepath.Resolver, cfg Config) ([]EntryResult, error) {
	tracked, repos, err := st.ListEnabledTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing enabled tracked entries: %w", err)
	}

	results := make([]EntryResult, 0, len(tracked))
	for _, t := range tracked {
		repo, ok := repos[t.RepoID]
		if !ok {
			results = append(results, EntryResult{Kind: t.TargetKind, Err: fmt.Errorf("tracked row %d references unknown repo_id %d", t.ID, t.RepoID)})
			continue
		}
		results = append(results, runEntry(ctx, st, g, resolver, repo, t, cfg))
	}
	return results, nil
}

func runEntry(ctx context.Context, st *store.Store, g *git.Git, resolver cachepath.Resolver, repo store.Repo, t store.Tracked, cfg Config) EntryResult {
	result := EntryResult{RepoFullName: repo.FullName, Kind: t.TargetKind}

	snap, hasSnapshot, err := st.LatestSnapshot(ctx, repo.ID)
	if err != nil {
		result.Err = fmt.Errorf("loading latest snapshot for %s: %w", repo.FullName, err)
		return result
	}

	head, err := g.LsRemoteHead(ctx, repo.URL)
	if err != nil {
		result.Err = fmt.Errorf("resolving remote head for %s: %w", repo.FullName, err)
		return result
	}

	if !hasSnapshot {
		if cfg.SinceLast {
			// No baseline to diff against yet; nothing to seed or
			// compare until the next pass establishes one.
			result.NoOp = true
			return result
		}
		if _, err := st.AppendSnapshot(ctx, repo.ID, head); err != nil {
			result.Err = fmt.Errorf("seeding snapshot for %s: %w", repo.FullName, err)
			return result
		}
		result.Seeded = true
		return result
	}

	if head == snap.HeadCommitID {
		result.NoOp = true
		return result
	}

	owner, name, err := splitFullName(repo.FullName)
	if err != nil {
		result.Err = err
		return result
	}

	req := session.Request{
		RepoID:        repo.FullName,
		RepoURL:       repo.URL,
		RepoPath:      resolver.RepoPath(owner, name),
		CacheRoot:     resolver.Base(),
		From:          snap.HeadCommitID,
		To:            head,
		Kind:          t.TargetKind,
		TrackedPaths:  t.Paths,
		Budgets:       cfg.Budgets,
		ReviewerSkill: cfg.ReviewerSkill,
	}

	existsFn := func(ctx context.Context, dir string) (bool, error) {
		_, ok, err := st.GetSessionByDir(ctx, dir)
		return ok, err
	}

	built, err := session.Build(ctx, g, req, existsFn)
	if err != nil {
		result.Err = fmt.Errorf("building session for %s: %w", repo.FullName, err)
		return result
	}

	stats := &store.DiffStats{
		FilesChanged: built.DiffStats.FilesChanged,
		Insertions:   built.DiffStats.Insertions,
		Deletions:    built.DiffStats.Deletions,
	}
	change, err := st.AppendChange(ctx, repo.ID, snap.HeadCommitID, head, t.TargetKind, stats, built.Drift)
	if err != nil {
		result.Err = fmt.Errorf("appending change for %s: %w", repo.FullName, err)
		return result
	}

	var sess store.Session
	if !built.Reused {
		sess, err = st.AppendSession(ctx, change.ID, built.SessionDir)
		if err != nil {
			result.Err = fmt.Errorf("appending session for %s: %w", repo.FullName, err)
			return result
		}
	} else if existing, ok, err := st.GetSessionByDir(ctx, built.SessionDir); err == nil && ok {
		sess = existing
	}

	if _, err := st.AppendSnapshot(ctx, repo.ID, head); err != nil {
		result.Err = fmt.Errorf("advancing snapshot for %s: %w", repo.FullName, err)
		return result
	}

	result.Change = &change
	result.Session = &sess

	if cfg.AutoReview && cfg.LaunchReview != nil && sess.ID != 0 {
		// LaunchReview owns the pending->running->terminal transitions
		// for sess.ID (spec.md §4.13 step 4); changedetect only
		// records whether the call itself failed to run at all.
		if _, err := cfg.LaunchReview(ctx, sess.SessionDir); err != nil {
			result.Err = fmt.Errorf("auto-review for %s: %w", repo.FullName, err)
		}
	}

	return result
}

func splitFullName(fullName string) (owner, name string, err error) {
	for i := len(fullName) - 1; i >= 0; i-- {
		if fullName[i] == '/' {
			return fullName[:i], fullName[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid repo full_name %q: expected owner/name", fullName)
}
