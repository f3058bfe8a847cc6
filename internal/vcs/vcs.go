// Package vcs provides a narrow abstraction over the distributed VCS
// command-line spec.md §6 treats as a wire protocol: detection, repo
// root resolution, and current-commit resolution. It exists so
// internal/fingerprint depends on an interface rather than
// internal/git directly; internal/session uses internal/git itself.
//
// Grounded on internal/vcs/vcs.go's detection/backend-selection shape.
// The original supported both git and jujutsu with two unimplemented
// backend stubs; this module has no jj example anywhere in the pack
// and spec.md never mentions a second VCS, so the jj backend and the
// mutation-oriented methods it implied (Add/Commit/Pull/Push) were
// dropped — see DESIGN.md.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"scout/internal/git"
	"scout/internal/procexec"
)

var (
	// ErrNotARepository is returned when the directory is not a VCS repository.
	ErrNotARepository = errors.New("not a repository")

	// ErrNoVCSFound is returned when no supported VCS is detected.
	ErrNoVCSFound = errors.New("no supported VCS found")
)

// VCS is the read-only subset of VCS operations the pipeline needs:
// detect a repository, find its root, and resolve its current commit.
type VCS interface {
	Name() string
	IsRepo(ctx context.Context, dir string) (bool, error)
	GetRepoRoot(ctx context.Context, dir string) (string, error)
	CurrentCommitID(ctx context.Context, dir string) (string, error)
}

// DetectVCS reports whether dir is (or is inside) a git repository.
// The detection check is filesystem-first (".git" presence) with a
// `git rev-parse` fallback for worktrees/submodules where ".git" is a
// file, not a directory.
func DetectVCS(ctx context.Context, dir string) error {
	if isGitRepo(ctx, dir) {
		return nil
	}
	return ErrNoVCSFound
}

func isGitRepo(ctx context.Context, dir string) bool {
	gitDir := filepath.Join(dir, ".git")
	if info, err := os.Stat(gitDir); err == nil && (info.IsDir() || info.Mode().IsRegular()) {
		return true
	}
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// gitVCS adapts internal/git.Git to the VCS interface.
type gitVCS struct {
	g *git.Git
}

// NewGitVCS returns a VCS implementation backed by runner.
func NewGitVCS(runner procexec.Runner) VCS {
	return &gitVCS{g: git.New(runner)}
}

func (v *gitVCS) Name() string { return "git" }

func (v *gitVCS) IsRepo(ctx context.Context, dir string) (bool, error) {
	return isGitRepo(ctx, dir), nil
}

func (v *gitVCS) GetRepoRoot(ctx context.Context, dir string) (string, error) {
	root, err := v.g.RevParse(ctx, dir, "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotARepository, err)
	}
	return root, nil
}

func (v *gitVCS) CurrentCommitID(ctx context.Context, dir string) (string, error) {
	return v.g.RevParse(ctx, dir, "HEAD")
}
