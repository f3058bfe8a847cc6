package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"scout/internal/artifact"
	"scout/internal/config"
	"scout/internal/procexec"
	"scout/internal/review"
	"scout/internal/session"
	"scout/internal/watch/changedetect"
	"scout/internal/watch/lock"
	"scout/internal/watch/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage and run the longitudinal watch subsystem",
}

var watchAddCmd = &cobra.Command{
	Use:   "add <owner/name>",
	Short: "Enable a tracked target kind for an already-registered repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchAdd,
}

var watchListCmd = &cobra.Command{
	Use:   "list <owner/name>",
	Short: "List tracked target kinds for a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchList,
}

var watchRemoveCmd = &cobra.Command{
	Use:   "remove <owner/name>",
	Short: "Disable a tracked target kind for a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchRemove,
}

var watchRunOnceCmd = &cobra.Command{
	Use:   "run-once",
	Short: "Run one change-detection pass over every enabled tracked entry",
	Args:  cobra.NoArgs,
	RunE:  runWatchRunOnce,
}

var (
	watchKind     string
	watchPaths    []string
	watchPoll     int
	watchSinceLast   bool
	watchAutoReview  bool
	watchReviewerCmd string
	watchReviewTimeout time.Duration
)

func init() {
	watchAddCmd.Flags().StringVar(&watchKind, "kind", "", "target kind")
	watchAddCmd.Flags().StringSliceVar(&watchPaths, "path", nil, "scoped path to watch (repeatable)")
	watchAddCmd.Flags().IntVar(&watchPoll, "poll-hours", 24, "poll interval in hours")

	watchRemoveCmd.Flags().StringVar(&watchKind, "kind", "", "target kind")

	watchRunOnceCmd.Flags().BoolVar(&watchSinceLast, "since-last", false, "seed snapshots only, never diff against an absent baseline")
	watchRunOnceCmd.Flags().BoolVar(&watchAutoReview, "auto-review", false, "launch the reviewer automatically on every session created this pass")
	watchRunOnceCmd.Flags().StringVar(&watchReviewerCmd, "reviewer-command", "claude", "reviewer binary invoked when --auto-review is set")
	watchRunOnceCmd.Flags().DurationVar(&watchReviewTimeout, "reviewer-timeout", 30*time.Minute, "reviewer subprocess timeout")

	watchCmd.AddCommand(watchAddCmd, watchListCmd, watchRemoveCmd, watchRunOnceCmd)
	rootCmd.AddCommand(watchCmd)
}

func openWatchStore() (*store.Store, error) {
	resolver, err := newResolver()
	if err != nil {
		return nil, err
	}
	return store.Open(filepath.Join(watchDir(resolver), "scout.db"))
}

func runWatchAdd(cmd *cobra.Command, args []string) error {
	warnExperimental("watch add")
	fullName := args[0]
	kind := artifact.Kind(watchKind)
	if !kind.IsValid() {
		err := fmt.Errorf("kind must be one of %v, got %q", artifact.AllKinds, watchKind)
		fail("%v", err)
		return err
	}

	st, err := openWatchStore()
	if err != nil {
		fail("opening watch store: %v", err)
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	repo, err := st.GetRepoByFullName(ctx, fullName)
	if err != nil {
		fail("%s is not registered; run `scout track` first: %v", fullName, err)
		return err
	}
	tracked, err := st.UpsertTracked(ctx, repo.ID, kind, watchPaths, true, watchPoll)
	if err != nil {
		fail("enabling tracked target: %v", err)
		return err
	}
	ok("watching %s kind=%s paths=%v poll=%dh", fullName, tracked.TargetKind, tracked.Paths, tracked.PollIntervalHours)
	return nil
}

func runWatchList(cmd *cobra.Command, args []string) error {
	warnExperimental("watch list")
	fullName := args[0]

	st, err := openWatchStore()
	if err != nil {
		fail("opening watch store: %v", err)
		return err
	}
	defer st.Close()

	tracked, err := st.ListAllTracked(cmd.Context(), fullName)
	if err != nil {
		fail("listing tracked targets: %v", err)
		return err
	}
	for _, t := range tracked {
		fmt.Printf("%s paths=%v enabled=%v poll=%dh\n", t.TargetKind, t.Paths, t.Enabled, t.PollIntervalHours)
	}
	ok("%d tracked target(s) for %s", len(tracked), fullName)
	return nil
}

func runWatchRemove(cmd *cobra.Command, args []string) error {
	warnExperimental("watch remove")
	fullName := args[0]
	kind := artifact.Kind(watchKind)
	if !kind.IsValid() {
		err := fmt.Errorf("kind must be one of %v, got %q", artifact.AllKinds, watchKind)
		fail("%v", err)
		return err
	}

	st, err := openWatchStore()
	if err != nil {
		fail("opening watch store: %v", err)
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	repo, err := st.GetRepoByFullName(ctx, fullName)
	if err != nil {
		fail("%s is not registered: %v", fullName, err)
		return err
	}
	existing, err := st.GetTracked(ctx, repo.ID, kind)
	if err != nil {
		fail("no tracked %s target for %s: %v", kind, fullName, err)
		return err
	}
	if _, err := st.UpsertTracked(ctx, repo.ID, kind, existing.Paths, false, existing.PollIntervalHours); err != nil {
		fail("disabling tracked target: %v", err)
		return err
	}
	ok("stopped watching %s kind=%s", fullName, kind)
	return nil
}

func runWatchRunOnce(cmd *cobra.Command, args []string) error {
	warnExperimental("watch run-once")

	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
		return err
	}
	resolver, err := newResolver()
	if err != nil {
		return err
	}
	storeDir := watchDir(resolver)

	st, err := store.Open(filepath.Join(storeDir, "scout.db"))
	if err != nil {
		fail("opening watch store: %v", err)
		return err
	}
	defer st.Close()

	runner := procexec.DefaultRunner{Timeout: watchReviewTimeout}
	launchReview := func(ctx context.Context, sessionDir string) (int, error) {
		sess, ok, err := st.GetSessionByDir(ctx, sessionDir)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("no session row for directory %s", sessionDir)
		}
		transition := func(outcome review.Outcome, exitCode int) error {
			status := artifact.SessionSuccess
			if outcome != review.OutcomeSuccess {
				status = artifact.SessionFailure
			}
			_, err := st.TransitionSession(ctx, sess.ID, artifact.SessionRunning, nil)
			if err != nil {
				return err
			}
			_, err = st.TransitionSession(ctx, sess.ID, status, &exitCode)
			return err
		}
		res, err := review.Launch(ctx, runner, sessionDir, review.Options{
			ReviewerCommand: watchReviewerCmd,
			Timeout:         watchReviewTimeout,
			Interactive:     false,
		}, transition)
		if err != nil {
			return res.ExitCode, err
		}
		return res.ExitCode, nil
	}

	var results []changedetect.EntryResult
	lockErr := lock.With(storeDir, lock.DefaultOptions("scout watch run-once", toolVersion), func() error {
		results, err = changedetect.RunOnce(cmd.Context(), st, newGit(), resolver, changedetect.Config{
			SinceLast:  watchSinceLast,
			AutoReview: watchAutoReview,
			Budgets: sessionBudgetsFromConfig(cfg),
			LaunchReview: launchReview,
		})
		return err
	})
	if lockErr != nil {
		fail("watch run-once: %v", lockErr)
		return lockErr
	}

	failed := 0
	seeded := 0
	noop := 0
	changed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fail("%s (%s): %v", r.RepoFullName, r.Kind, r.Err)
		case r.Seeded:
			seeded++
		case r.NoOp:
			noop++
		default:
			changed++
		}
	}
	ok("watch run-once: %d entries, %d changed, %d seeded, %d no-op, %d failed", len(results), changed, seeded, noop, failed)
	return nil
}

func sessionBudgetsFromConfig(cfg *config.Config) session.Budgets {
	return session.Budgets{TokenBudget: cfg.TokenBudget, MaxFilesPerChunk: cfg.MaxFilesPerChunk}
}
