// Package procexec is the one place the module shells out to another
// process. Every subprocess invocation — git, a reviewer CLI, the
// future "external process-execution primitive" the spec treats as a
// collaborator — goes through a Runner so hook-path neutralization and
// timeout handling happen exactly once instead of at every call site.
//
// Grounded on internal/git/git.go, whose exported methods are each
// annotated "SECURITY: repoPath must be a validated, trusted path" and
// which never invokes git without first establishing a known-clean
// environment.
package procexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes a subprocess in dir and returns its captured stdout.
// Implementations must neutralize any environment-level hook or config
// injection before the child process starts.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout string, err error)
}

// Result carries the full outcome of a Run call, including the exit
// code mapping the Review Launcher needs (spec.md §4.16): a deadline
// exceeded maps to 124, a killed process to 137.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

const (
	// ExitTimeout is the conventional code for a command killed by a
	// timeout (matches coreutils' `timeout`).
	ExitTimeout = 124
	// ExitKilled is the conventional code for a command killed by a
	// fatal signal (128 + SIGKILL).
	ExitKilled = 137
)

// DefaultRunner shells out via os/exec with a hardened environment:
// system git config is disabled and the hooks path is neutralized, so
// a cloned repository's own config can never run arbitrary code during
// a clone, checkout, or diff.
type DefaultRunner struct {
	// Timeout bounds every invocation; zero means no timeout.
	Timeout time.Duration
}

var hardenedEnv = []string{
	"GIT_CONFIG_NOSYSTEM=1",
	"GIT_TERMINAL_PROMPT=0",
	"GIT_CONFIG_COUNT=1",
	"GIT_CONFIG_KEY_0=core.hooksPath",
	"GIT_CONFIG_VALUE_0=/dev/null",
}

func (r DefaultRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	res, err := r.RunFull(ctx, dir, name, args...)
	return res.Stdout, err
}

// RunFull is like Run but returns the full Result, including the exit
// code mapping used by internal/review.
func (r DefaultRunner) RunFull(ctx context.Context, dir, name string, args ...string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(cmd.Environ(), hardenedEnv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctx.Err() == context.DeadlineExceeded {
		res.ExitCode = ExitTimeout
		return res, fmt.Errorf("%s %v: timed out after %s", name, args, r.Timeout)
	}

	if exitErr, ok := runErr.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode < 0 {
			// Negative ExitCode from os/exec means the process was
			// terminated by a signal rather than exiting normally.
			res.ExitCode = ExitKilled
		}
		return res, fmt.Errorf("%s %v: %w: %s", name, args, runErr, res.Stderr)
	}
	if runErr != nil {
		return res, fmt.Errorf("%s %v: %w", name, args, runErr)
	}
	return res, nil
}
