// Package session implements the Session Builder (spec.md §4.14):
// given a repository, a commit range, a target kind, and tracked
// paths, it materializes a detached working tree, computes a hygienic
// diff, chunks it to fit a token budget, and emits a self-contained
// review session directory.
//
// Grounded on internal/git's worktree/diff primitives and the
// deterministic-path convention from internal/cachepath; the
// idempotence check reuses internal/watch/store's GetSessionByDir so
// the Session row itself, not a side file, is the source of truth.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scout/internal/artifact"
	"scout/internal/git"
)

// ErrNoChangesInScope is returned when the hygienic diff over the
// requested range and scope is empty (spec.md §7).
var ErrNoChangesInScope = errors.New("no changes in scope")

// Budgets bounds chunking (spec.md §4.14 step 7).
type Budgets struct {
	TokenBudget      int
	MaxFilesPerChunk int
}

// Request is the Session Builder's input.
type Request struct {
	RepoID         string // "owner/name"
	RepoURL        string
	RepoPath       string // cached, shallow-cloned working copy
	CacheRoot      string // base for <cache>/runs/reviews/...
	From, To       string
	Kind           artifact.Kind
	TrackedPaths   []string
	IgnorePatterns []string
	Budgets        Budgets
	ReviewerSkill  string
}

// Result is the Session Builder's output (spec.md §4.14 step 9).
type Result struct {
	SessionDir      string
	Drift           bool
	DiffStats       git.DiffStats
	ChunkCount      int
	EstimatedTokens int
	Reused          bool
}

// ExistsFunc reports whether a Session row already exists for a given
// session directory. internal/watch/store.Store.GetSessionByDir
// satisfies this shape when wrapped as
// `func(ctx, dir) (bool, error) { _, ok, err := s.GetSessionByDir(ctx, dir); return ok, err }`.
// Callers that don't use the watch subsystem (a standalone `session
// build` invocation) pass nil and skip the idempotence check.
type ExistsFunc func(ctx context.Context, dir string) (bool, error)

// Build runs the full Session Builder contract.
func Build(ctx context.Context, g *git.Git, req Request, exists ExistsFunc) (Result, error) {
	sessionDir := DeterministicPath(req.CacheRoot, req.RepoID, req.Kind, req.From, req.To)

	if exists != nil {
		if ok, err := exists(ctx, sessionDir); err == nil && ok {
			return reuseExisting(sessionDir)
		}
	}

	if _, err := g.FetchAndResetToHead(ctx, req.RepoPath); err != nil {
		return Result{}, fmt.Errorf("materializing repo cache for %s: %w", req.RepoID, err)
	}

	worktreePath := filepath.Join(sessionDir, "repo")
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating session dir %s: %w", sessionDir, err)
	}
	if err := g.WorktreeAdd(ctx, req.RepoPath, worktreePath, req.To); err != nil {
		_ = os.RemoveAll(sessionDir)
		return Result{}, fmt.Errorf("creating worktree for %s@%s: %w", req.RepoID, req.To, err)
	}

	result, err := buildDiffAndEmit(ctx, g, req, sessionDir)
	if err != nil {
		_ = g.WorktreeRemove(ctx, req.RepoPath, worktreePath)
		_ = os.RemoveAll(sessionDir)
		return Result{}, err
	}
	return result, nil
}

func reuseExisting(sessionDir string) (Result, error) {
	ctxPath := filepath.Join(sessionDir, "review_context.json")
	data, err := os.ReadFile(ctxPath)
	if err != nil {
		return Result{SessionDir: sessionDir, Reused: true}, nil
	}
	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return Result{SessionDir: sessionDir, Reused: true}, nil
	}
	return Result{
		SessionDir:      sessionDir,
		Drift:           c.Drift,
		ChunkCount:      c.ChunkCount,
		EstimatedTokens: c.EstimatedTokens,
		Reused:          true,
	}, nil
}

func buildDiffAndEmit(ctx context.Context, g *git.Git, req Request, sessionDir string) (Result, error) {
	exclusions := mergeExclusions(DefaultExclusions, req.IgnorePatterns)

	scopedOpts := git.DiffOptions{From: req.From, To: req.To, Paths: req.TrackedPaths, Excludes: exclusions, FindRenames: true}
	scopedDiff, err := g.Diff(ctx, req.RepoPath, scopedOpts)
	if err != nil {
		return Result{}, fmt.Errorf("computing scoped diff: %w", err)
	}
	scopedNames, err := g.NameStatus(ctx, req.RepoPath, scopedOpts)
	if err != nil {
		return Result{}, fmt.Errorf("computing scoped name-status: %w", err)
	}

	diffText := scopedDiff
	drift := false
	var driftSummary string

	if strings.TrimSpace(scopedDiff) == "" && len(req.TrackedPaths) > 0 {
		unscopedOpts := git.DiffOptions{From: req.From, To: req.To, Excludes: exclusions, FindRenames: true}
		unscopedDiff, err := g.Diff(ctx, req.RepoPath, unscopedOpts)
		if err != nil {
			return Result{}, fmt.Errorf("computing unscoped diff: %w", err)
		}
		if strings.TrimSpace(unscopedDiff) != "" {
			drift = true
			diffText = unscopedDiff
			driftSummary = "scoped diff was empty; adopted the unscoped diff because the commit range touched files outside the tracked paths."
		}
	} else {
		drift, driftSummary = detectRenameDrift(scopedNames, req.TrackedPaths)
	}

	if strings.TrimSpace(diffText) == "" {
		return Result{}, fmt.Errorf("%w: no changes between %s and %s for %s", ErrNoChangesInScope, req.From, req.To, req.RepoID)
	}

	stats, err := g.DiffStat(ctx, req.RepoPath, scopedOpts)
	if err != nil {
		return Result{}, fmt.Errorf("computing diff stats: %w", err)
	}
	if drift {
		// adopted the unscoped range; reflect that in the reported stats too
		if unscopedStats, err := g.DiffStat(ctx, req.RepoPath, git.DiffOptions{From: req.From, To: req.To, Excludes: exclusions, FindRenames: true}); err == nil {
			stats = unscopedStats
		}
	}
	chunks := ChunkDiff(diffText, req.Budgets)

	if err := emitSession(sessionDir, req, chunks, drift, driftSummary); err != nil {
		return Result{}, err
	}

	return Result{
		SessionDir:      sessionDir,
		Drift:           drift,
		DiffStats:       stats,
		ChunkCount:      len(chunks),
		EstimatedTokens: totalTokens(chunks),
	}, nil
}

// DeterministicPath builds `<cache>/runs/reviews/<safe-repo>/<date>/<kind>/<from7>_<to7>`.
func DeterministicPath(cacheRoot, repoID string, kind artifact.Kind, from, to string) string {
	safeRepo := strings.ReplaceAll(repoID, "/", "_")
	date := time.Now().UTC().Format("2006-01-02")
	return filepath.Join(cacheRoot, "runs", "reviews", safeRepo, date, string(kind), fmt.Sprintf("%s_%s", shortSHA(from), shortSHA(to)))
}

func shortSHA(commit string) string {
	if commit == "" {
		return "root"
	}
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// detectRenameDrift flags structural drift when a rename/copy crosses
// the tracked-paths boundary (one side in scope, the other out),
// signalling the component moved rather than merely changed.
func detectRenameDrift(changes []git.FileChange, trackedPaths []string) (bool, string) {
	if len(trackedPaths) == 0 {
		return false, ""
	}
	for _, c := range changes {
		if c.OldPath == "" {
			continue
		}
		oldIn := pathInScope(c.OldPath, trackedPaths)
		newIn := pathInScope(c.Path, trackedPaths)
		if oldIn != newIn {
			return true, fmt.Sprintf("rename crossed tracked-path boundary: %s -> %s", c.OldPath, c.Path)
		}
	}
	return false, ""
}

func pathInScope(path string, trackedPaths []string) bool {
	for _, p := range trackedPaths {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
