package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scout/internal/artifact"
	"scout/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Build a standalone review session directory",
}

var sessionBuildCmd = &cobra.Command{
	Use:   "build <owner/name>",
	Short: "Materialize a diff-review session between two commits for a cloned repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionBuild,
}

var (
	sessionURL      string
	sessionFrom     string
	sessionTo       string
	sessionKind     string
	sessionPaths    []string
	sessionSkill    string
)

func init() {
	sessionBuildCmd.Flags().StringVar(&sessionURL, "url", "", "repository clone URL (required)")
	sessionBuildCmd.Flags().StringVar(&sessionFrom, "from", "", "starting commit (required)")
	sessionBuildCmd.Flags().StringVar(&sessionTo, "to", "", "ending commit (required)")
	sessionBuildCmd.Flags().StringVar(&sessionKind, "kind", "", "target kind")
	sessionBuildCmd.Flags().StringSliceVar(&sessionPaths, "path", nil, "scoped path (repeatable; empty means the whole repository)")
	sessionBuildCmd.Flags().StringVar(&sessionSkill, "reviewer-skill", "", "reviewer-skill pin recorded in review_context.json")

	sessionCmd.AddCommand(sessionBuildCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionBuild(cmd *cobra.Command, args []string) error {
	warnExperimental("session build")
	fullName := args[0]
	if sessionURL == "" || sessionFrom == "" || sessionTo == "" {
		err := fmt.Errorf("--url, --from, and --to are all required")
		fail("%v", err)
		return err
	}
	kind := artifact.Kind(sessionKind)
	if !kind.IsValid() {
		err := fmt.Errorf("kind must be one of %v, got %q", artifact.AllKinds, sessionKind)
		fail("%v", err)
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
		return err
	}
	resolver, err := newResolver()
	if err != nil {
		return err
	}

	owner, name := splitOwnerRepo(fullName)
	req := session.Request{
		RepoID:        fullName,
		RepoURL:       sessionURL,
		RepoPath:      resolver.RepoPath(owner, name),
		CacheRoot:     resolver.Base(),
		From:          sessionFrom,
		To:            sessionTo,
		Kind:          kind,
		TrackedPaths:  sessionPaths,
		Budgets:       sessionBudgetsFromConfig(cfg),
		ReviewerSkill: sessionSkill,
	}

	step("building session for %s %s..%s", fullName, short(sessionFrom), short(sessionTo))
	result, err := session.Build(cmd.Context(), newGit(), req, nil)
	if err != nil {
		fail("session build: %v", err)
		return err
	}

	ok("session ready at %s (drift=%v, chunks=%d, ~%d tokens)", result.SessionDir, result.Drift, result.ChunkCount, result.EstimatedTokens)
	return nil
}

func short(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
