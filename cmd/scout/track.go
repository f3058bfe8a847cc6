package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scout/internal/artifact"
	"scout/internal/watch/store"
)

var trackCmd = &cobra.Command{
	Use:   "track <owner/name>",
	Short: "Register a repository and a target kind for longitudinal watching",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrack,
}

var (
	trackURL     string
	trackBranch  string
	trackLicense string
	trackKind    string
	trackPaths   []string
	trackPoll    int
	trackEnabled bool
)

func init() {
	trackCmd.Flags().StringVar(&trackURL, "url", "", "repository clone URL (required)")
	trackCmd.Flags().StringVar(&trackBranch, "branch", "", "default branch")
	trackCmd.Flags().StringVar(&trackLicense, "license", "", "SPDX license identifier")
	trackCmd.Flags().StringVar(&trackKind, "kind", "", "target kind (one of: mcp-server, cli, skill, hook, plugin, library)")
	trackCmd.Flags().StringSliceVar(&trackPaths, "path", nil, "scoped path to watch (repeatable; empty means the whole repository)")
	trackCmd.Flags().IntVar(&trackPoll, "poll-hours", 24, "poll interval in hours")
	trackCmd.Flags().BoolVar(&trackEnabled, "enabled", true, "whether this tracked target is active")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	warnExperimental("track")
	fullName := args[0]
	if !strings.Contains(fullName, "/") {
		err := fmt.Errorf("repository must be owner/name, got %q", fullName)
		fail("%v", err)
		return err
	}
	kind := artifact.Kind(trackKind)
	if !kind.IsValid() {
		err := fmt.Errorf("kind must be one of %v, got %q", artifact.AllKinds, trackKind)
		fail("%v", err)
		return err
	}
	if trackURL == "" {
		err := fmt.Errorf("--url is required")
		fail("%v", err)
		return err
	}

	resolver, err := newResolver()
	if err != nil {
		return err
	}
	st, err := store.Open(filepath.Join(watchDir(resolver), "scout.db"))
	if err != nil {
		fail("opening watch store: %v", err)
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	repo, err := st.UpsertRepo(ctx, fullName, trackURL, trackBranch, trackLicense)
	if err != nil {
		fail("registering repo: %v", err)
		return err
	}
	tracked, err := st.UpsertTracked(ctx, repo.ID, kind, trackPaths, trackEnabled, trackPoll)
	if err != nil {
		fail("registering tracked target: %v", err)
		return err
	}

	ok("tracking %s kind=%s paths=%v poll=%dh enabled=%v", fullName, tracked.TargetKind, tracked.Paths, tracked.PollIntervalHours, tracked.Enabled)
	return nil
}
