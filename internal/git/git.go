// Package git is the hardened git subprocess wrapper every VCS-facing
// stage (Clone Engine, Change Detector, Session Builder) goes through.
// Every invocation runs via internal/procexec so hook execution is
// disabled at the environment level, not by trusting a flag per call.
//
// Grounded on internal/git/git.go's SECURITY-annotated method shape
// ("repoPath must be a validated, trusted path") — retained here, but
// the operations themselves are rebuilt for read/fetch workflows
// (clone, diff, worktree, rename-status) instead of commit/rebase
// workflows, which this module has no use for.
package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"scout/internal/procexec"
)

// Git wraps a procexec.Runner with the git subcommands the pipeline
// needs. SECURITY: every repoPath argument must be a validated,
// trusted path — this type performs no path sandboxing of its own.
type Git struct {
	runner procexec.Runner
}

func New(runner procexec.Runner) *Git {
	return &Git{runner: runner}
}

// Clone performs a shallow, hook-disabled clone.
func (g *Git) Clone(ctx context.Context, opts CloneOptions) error {
	args := []string{"clone", "--no-local"}
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}
	if opts.Reference != "" {
		args = append(args, "--branch", opts.Reference)
	}
	args = append(args, "-c", "core.hooksPath=/dev/null", opts.URL, opts.Dest)
	_, err := g.runner.Run(ctx, ".", "git", args...)
	if err != nil {
		return fmt.Errorf("git clone %s: %w", opts.URL, err)
	}
	return nil
}

// FetchAndResetToHead fetches the remote default branch shallowly and
// hard-resets the working copy to it, used when a cache entry already
// exists and only needs to catch up (spec.md §4.5/§4.14).
func (g *Git) FetchAndResetToHead(ctx context.Context, repoPath string) (string, error) {
	if _, err := g.runner.Run(ctx, repoPath, "git", "-C", repoPath, "-c", "core.hooksPath=/dev/null", "fetch", "--depth", "1", "origin"); err != nil {
		return "", fmt.Errorf("git fetch in %s: %w", repoPath, err)
	}
	if _, err := g.runner.Run(ctx, repoPath, "git", "-C", repoPath, "reset", "--hard", "origin/HEAD"); err != nil {
		return "", fmt.Errorf("git reset in %s: %w", repoPath, err)
	}
	return g.RevParse(ctx, repoPath, "HEAD")
}

// LsRemoteHead resolves a remote's default branch HEAD commit id
// without cloning, used by the Change Detector to check for a new
// head before committing to a full materialize (spec.md §4.13).
func (g *Git) LsRemoteHead(ctx context.Context, url string) (string, error) {
	out, err := g.runner.Run(ctx, ".", "git", "-c", "core.hooksPath=/dev/null", "ls-remote", url, "HEAD")
	if err != nil {
		return "", fmt.Errorf("git ls-remote %s HEAD: %w", url, err)
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", fmt.Errorf("git ls-remote %s HEAD: empty response", url)
	}
	return fields[0], nil
}

// RevParse resolves a ref to a commit id.
func (g *Git) RevParse(ctx context.Context, repoPath, ref string) (string, error) {
	out, err := g.runner.Run(ctx, repoPath, "git", "-C", repoPath, "rev-parse", ref)
	if err != nil {
		return "", fmt.Errorf("git rev-parse %s in %s: %w", ref, repoPath, err)
	}
	return strings.TrimSpace(out), nil
}

// RootCommit resolves the repository's first commit, used as the
// fallback "from" checkpoint when no review has run yet.
func (g *Git) RootCommit(ctx context.Context, repoPath string) (string, error) {
	out, err := g.runner.Run(ctx, repoPath, "git", "-C", repoPath, "rev-list", "--max-parents=0", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-list --max-parents=0 in %s: %w", repoPath, err)
	}
	lines := strings.Fields(out)
	if len(lines) == 0 {
		return "", fmt.Errorf("no root commit found in %s", repoPath)
	}
	return lines[len(lines)-1], nil
}

// WorktreeAdd creates a detached working tree at commit, used by the
// Session Builder to materialize "repo/" without disturbing the
// cached clone's own checkout.
func (g *Git) WorktreeAdd(ctx context.Context, repoPath, worktreePath, commit string) error {
	_, err := g.runner.Run(ctx, repoPath, "git", "-C", repoPath, "worktree", "add", "--detach", worktreePath, commit)
	if err != nil {
		return fmt.Errorf("git worktree add %s@%s: %w", worktreePath, commit, err)
	}
	return nil
}

// WorktreeRemove detaches and deletes a working tree created by
// WorktreeAdd. Always called on both success and failure paths per
// spec.md §4.14's teardown contract.
func (g *Git) WorktreeRemove(ctx context.Context, repoPath, worktreePath string) error {
	_, err := g.runner.Run(ctx, repoPath, "git", "-C", repoPath, "worktree", "remove", "--force", worktreePath)
	if err != nil {
		return fmt.Errorf("git worktree remove %s: %w", worktreePath, err)
	}
	return nil
}

// DiffOptions configures a name-status/patch diff.
type DiffOptions struct {
	From, To  string
	Paths     []string // pathspec scope; empty means unscoped
	Excludes  []string // negative pathspecs (lockfiles, binaries, ...)
	FindRenames bool
}

func (o DiffOptions) pathspecArgs() []string {
	var args []string
	if len(o.Paths) > 0 || len(o.Excludes) > 0 {
		args = append(args, "--")
		if len(o.Paths) > 0 {
			args = append(args, o.Paths...)
		} else {
			args = append(args, ".")
		}
		for _, ex := range o.Excludes {
			args = append(args, ":(exclude)"+ex)
		}
	}
	return args
}

// Diff returns unified patch text for the given range.
func (g *Git) Diff(ctx context.Context, repoPath string, opts DiffOptions) (string, error) {
	args := []string{"-C", repoPath, "diff"}
	if opts.FindRenames {
		args = append(args, "-M")
	}
	args = append(args, fmt.Sprintf("%s..%s", opts.From, opts.To))
	args = append(args, opts.pathspecArgs()...)
	out, err := g.runner.Run(ctx, repoPath, "git", args...)
	if err != nil {
		return "", fmt.Errorf("git diff %s..%s in %s: %w", opts.From, opts.To, repoPath, err)
	}
	return out, nil
}

// NameStatus returns the rename-status stream for a range: one
// FileChange per touched path, with rename/copy similarity parsed out.
// This is the drift detector's primary signal (spec.md §4.14 step 5).
func (g *Git) NameStatus(ctx context.Context, repoPath string, opts DiffOptions) ([]FileChange, error) {
	args := []string{"-C", repoPath, "diff", "--name-status"}
	if opts.FindRenames {
		args = append(args, "-M")
	}
	args = append(args, fmt.Sprintf("%s..%s", opts.From, opts.To))
	args = append(args, opts.pathspecArgs()...)
	out, err := g.runner.Run(ctx, repoPath, "git", args...)
	if err != nil {
		return nil, fmt.Errorf("git diff --name-status %s..%s in %s: %w", opts.From, opts.To, repoPath, err)
	}
	return parseNameStatus(out), nil
}

func parseNameStatus(out string) []FileChange {
	var changes []FileChange
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		code := fields[0]
		switch {
		case strings.HasPrefix(code, "R"), strings.HasPrefix(code, "C"):
			if len(fields) < 3 {
				continue
			}
			sim, _ := strconv.Atoi(strings.TrimLeft(code, "RC"))
			changes = append(changes, FileChange{Status: code, OldPath: fields[1], Path: fields[2], Similarity: sim})
		default:
			changes = append(changes, FileChange{Status: code, Path: fields[1]})
		}
	}
	return changes
}

// DiffStat returns aggregate insertions/deletions/files-changed for a
// range, used to populate Change.diff_stats.
func (g *Git) DiffStat(ctx context.Context, repoPath string, opts DiffOptions) (DiffStats, error) {
	args := []string{"-C", repoPath, "diff", "--numstat"}
	if opts.FindRenames {
		args = append(args, "-M")
	}
	args = append(args, fmt.Sprintf("%s..%s", opts.From, opts.To))
	args = append(args, opts.pathspecArgs()...)
	out, err := g.runner.Run(ctx, repoPath, "git", args...)
	if err != nil {
		return DiffStats{}, fmt.Errorf("git diff --numstat %s..%s in %s: %w", opts.From, opts.To, repoPath, err)
	}
	var stats DiffStats
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		stats.FilesChanged++
		if ins, err := strconv.Atoi(fields[0]); err == nil {
			stats.Insertions += ins
		}
		if del, err := strconv.Atoi(fields[1]); err == nil {
			stats.Deletions += del
		}
	}
	return stats, nil
}
