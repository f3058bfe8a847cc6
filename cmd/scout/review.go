package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"scout/internal/procexec"
	"scout/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Launch a reviewer subprocess against a session directory",
}

var reviewLaunchCmd = &cobra.Command{
	Use:   "launch <session-dir>",
	Short: "Validate a session directory and invoke the reviewer against it",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewLaunch,
}

var (
	reviewCommand     string
	reviewArgs        []string
	reviewTimeout     time.Duration
	reviewInteractive bool
	reviewRun         bool
	reviewSkip        bool
)

func init() {
	reviewLaunchCmd.Flags().StringVar(&reviewCommand, "reviewer-command", "claude", "reviewer binary to invoke")
	reviewLaunchCmd.Flags().StringSliceVar(&reviewArgs, "reviewer-arg", nil, "argument to pass to the reviewer binary (repeatable)")
	reviewLaunchCmd.Flags().DurationVar(&reviewTimeout, "timeout", 30*time.Minute, "reviewer subprocess timeout")
	reviewLaunchCmd.Flags().BoolVar(&reviewInteractive, "interactive", false, "run the reviewer attached to the caller's terminal")
	reviewLaunchCmd.Flags().BoolVar(&reviewRun, "run", false, "invoke the reviewer directly, bypassing the session-shape and availability preflight checks")
	reviewLaunchCmd.Flags().BoolVar(&reviewSkip, "skip", false, "run the preflight checks only and exit without invoking the reviewer")

	reviewCmd.AddCommand(reviewLaunchCmd)
	rootCmd.AddCommand(reviewCmd)
}

func runReviewLaunch(cmd *cobra.Command, args []string) error {
	warnExperimental("review launch")
	sessionDir := args[0]

	if reviewRun && reviewSkip {
		err := fmt.Errorf("--run and --skip are mutually exclusive")
		fail("%v", err)
		return err
	}

	if reviewSkip {
		if err := review.Validate(sessionDir); err != nil {
			fail("preflight: %v", err)
			return err
		}
		if !review.Available(reviewCommand) {
			err := fmt.Errorf("reviewer command %q not found on PATH", reviewCommand)
			fail("preflight: %v", err)
			return err
		}
		ok("preflight passed for %s (reviewer invocation skipped)", sessionDir)
		return nil
	}

	runner := procexec.DefaultRunner{Timeout: reviewTimeout}
	step("launching reviewer against %s", sessionDir)
	result, err := review.Launch(cmd.Context(), runner, sessionDir, review.Options{
		ReviewerCommand: reviewCommand,
		ReviewerArgs:    reviewArgs,
		Timeout:         reviewTimeout,
		Interactive:     reviewInteractive,
		SkipPreflight:   reviewRun,
	}, nil)
	if err != nil {
		fail("review launch: %v", err)
		return err
	}

	if result.Outcome == review.OutcomeSuccess {
		ok("reviewer exited 0")
		return nil
	}
	// Reviewer exit codes pass through verbatim rather than collapsing
	// to the generic invocation-error exit status.
	fail("reviewer outcome=%s exit=%d", result.Outcome, result.ExitCode)
	os.Exit(result.ExitCode)
	return nil
}
