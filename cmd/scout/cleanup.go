package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scout/internal/artifact"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove finished session directories and orphaned clone-cache entries",
}

var cleanupSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Delete session directories whose Session row is terminal and older than a threshold",
	Args:  cobra.NoArgs,
	RunE:  runCleanupSessions,
}

var cleanupCacheCmd = &cobra.Command{
	Use:   "cache --manifest clone-manifest.json",
	Short: "Delete cloned repositories under the repo cache that a clone manifest no longer references",
	Args:  cobra.NoArgs,
	RunE:  runCleanupCache,
}

var (
	cleanupOlderThan     time.Duration
	cleanupDryRun        bool
	cleanupManifestPath  string
)

func init() {
	cleanupSessionsCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", 7*24*time.Hour, "delete terminal sessions finished longer ago than this")
	cleanupSessionsCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "list what would be deleted without deleting it")

	cleanupCacheCmd.Flags().StringVar(&cleanupManifestPath, "manifest", "", "path to a clone-manifest.json naming the repos still in use (required)")
	cleanupCacheCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "list what would be deleted without deleting it")

	cleanupCmd.AddCommand(cleanupSessionsCmd, cleanupCacheCmd)
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanupSessions(cmd *cobra.Command, args []string) error {
	yellow := color.New(color.FgYellow).SprintFunc()

	st, err := openWatchStore()
	if err != nil {
		fail("opening watch store: %v", err)
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	cutoff := time.Now().UTC().Add(-cleanupOlderThan)
	sessions, err := st.TerminalSessions(ctx, cutoff)
	if err != nil {
		fail("listing terminal sessions: %v", err)
		return err
	}

	if len(sessions) == 0 {
		ok("no terminal sessions older than %s", cleanupOlderThan)
		return nil
	}

	if cleanupDryRun {
		fmt.Printf("%s\n", yellow("DRY RUN MODE - no sessions will be deleted"))
	}

	deleted := 0
	for _, sess := range sessions {
		fmt.Printf("%s (status=%s, finished=%s)\n", sess.SessionDir, sess.Status, finishedAtString(sess.FinishedAt))
		if cleanupDryRun {
			continue
		}
		if err := os.RemoveAll(sess.SessionDir); err != nil {
			fail("removing %s: %v", sess.SessionDir, err)
			continue
		}
		if err := st.DeleteSession(ctx, sess.ID); err != nil {
			fail("deleting session row %d: %v", sess.ID, err)
			continue
		}
		deleted++
	}

	if cleanupDryRun {
		ok("would delete %d of %d terminal session(s)", len(sessions), len(sessions))
		return nil
	}
	ok("deleted %d of %d terminal session(s)", deleted, len(sessions))
	return nil
}

func finishedAtString(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.Format(time.RFC3339)
}

func runCleanupCache(cmd *cobra.Command, args []string) error {
	yellow := color.New(color.FgYellow).SprintFunc()

	if cleanupManifestPath == "" {
		err := fmt.Errorf("--manifest is required")
		fail("%v", err)
		return err
	}

	var manifest artifact.CloneManifestArtifact
	if err := artifact.ReadJSON(cleanupManifestPath, &manifest); err != nil {
		fail("reading manifest: %v", err)
		return err
	}

	resolver, err := newResolver()
	if err != nil {
		return err
	}
	reposRoot := resolver.Category("repos")

	inUse := make(map[string]bool, len(manifest.Entries))
	for _, e := range manifest.Entries {
		inUse[filepath.Clean(e.LocalPath)] = true
	}

	owners, err := os.ReadDir(reposRoot)
	if os.IsNotExist(err) {
		ok("no repo cache at %s", reposRoot)
		return nil
	}
	if err != nil {
		fail("reading %s: %v", reposRoot, err)
		return err
	}

	if cleanupDryRun {
		fmt.Printf("%s\n", yellow("DRY RUN MODE - no directories will be deleted"))
	}

	var orphans []string
	for _, owner := range owners {
		if !owner.IsDir() {
			continue
		}
		ownerDir := filepath.Join(reposRoot, owner.Name())
		repos, err := os.ReadDir(ownerDir)
		if err != nil {
			fail("reading %s: %v", ownerDir, err)
			continue
		}
		for _, repo := range repos {
			if !repo.IsDir() {
				continue
			}
			repoDir := filepath.Join(ownerDir, repo.Name())
			if inUse[filepath.Clean(repoDir)] {
				continue
			}
			orphans = append(orphans, repoDir)
		}
	}

	if len(orphans) == 0 {
		ok("no orphaned clone-cache entries under %s", reposRoot)
		return nil
	}

	deleted := 0
	for _, dir := range orphans {
		fmt.Println(dir)
		if cleanupDryRun {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			fail("removing %s: %v", dir, err)
			continue
		}
		deleted++
	}

	if cleanupDryRun {
		ok("would delete %d orphaned clone-cache director(ies)", len(orphans))
		return nil
	}
	ok("deleted %d of %d orphaned clone-cache director(ies)", deleted, len(orphans))
	return nil
}
