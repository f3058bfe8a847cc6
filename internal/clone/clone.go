// Package clone implements the Clone Engine (spec.md §4.5): shallow
// fetch the top-K Tier-1 candidates into the content-addressed cache
// using hardened git invocation, tolerating per-repo failure without
// aborting the batch.
package clone

import (
	"context"
	"fmt"
	"os"

	"scout/internal/artifact"
	"scout/internal/cachepath"
	"scout/internal/git"
)

// Result is the outcome of cloning one candidate: either a CloneEntry
// on success, or an error recorded for telemetry and omission from the
// manifest (spec.md §4.5: "on per-repo failure, log, continue, and
// exclude that repo from the manifest").
type Result struct {
	RepoID string
	Entry  *artifact.CloneEntry
	Err    error
}

// Run clones the top budget candidates (already sorted descending by
// the Discovery Engine) into resolver's repo cache, returning one
// Result per attempted candidate.
func Run(ctx context.Context, g *git.Git, resolver cachepath.Resolver, candidates []artifact.Candidate, budget int) []Result {
	if budget > 0 && budget < len(candidates) {
		candidates = candidates[:budget]
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		entry, err := cloneOne(ctx, g, resolver, c)
		results = append(results, Result{RepoID: c.RepoID, Entry: entry, Err: err})
	}
	return results
}

func cloneOne(ctx context.Context, g *git.Git, resolver cachepath.Resolver, c artifact.Candidate) (*artifact.CloneEntry, error) {
	owner, name, err := splitRepoID(c.RepoID)
	if err != nil {
		return nil, err
	}
	dest := resolver.RepoPath(owner, name)

	if isValidWorkingCopy(dest) {
		commitID, err := g.RevParse(ctx, dest, "HEAD")
		if err != nil {
			return nil, fmt.Errorf("repo_id %s: cached copy at %s is unreadable: %w", c.RepoID, dest, err)
		}
		return &artifact.CloneEntry{RepoID: c.RepoID, URL: c.URL, LocalPath: dest, CommitID: commitID, Tier1Score: c.Tier1Score}, nil
	}

	if err := g.Clone(ctx, git.CloneOptions{URL: c.URL, Dest: dest, Depth: 1}); err != nil {
		return nil, fmt.Errorf("repo_id %s: %w", c.RepoID, err)
	}
	commitID, err := g.RevParse(ctx, dest, "HEAD")
	if err != nil {
		return nil, fmt.Errorf("repo_id %s: cloned but could not resolve HEAD: %w", c.RepoID, err)
	}
	return &artifact.CloneEntry{RepoID: c.RepoID, URL: c.URL, LocalPath: dest, CommitID: commitID, Tier1Score: c.Tier1Score}, nil
}

func isValidWorkingCopy(dest string) bool {
	info, err := os.Stat(dest + "/.git")
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}

func splitRepoID(repoID string) (owner, name string, err error) {
	for i := len(repoID) - 1; i >= 0; i-- {
		if repoID[i] == '/' {
			return repoID[:i], repoID[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid repo_id %q: expected owner/name", repoID)
}

// Manifest builds the persisted clone-manifest.json content from
// results, skipping failures per spec.md §4.5.
func Manifest(results []Result) []artifact.CloneEntry {
	entries := make([]artifact.CloneEntry, 0, len(results))
	for _, r := range results {
		if r.Entry != nil {
			entries = append(entries, *r.Entry)
		}
	}
	return entries
}
