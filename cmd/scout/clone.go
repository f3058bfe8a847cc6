package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"scout/internal/artifact"
	"scout/internal/clone"
)

var cloneCmd = &cobra.Command{
	Use:   "clone [path]",
	Short: "Shallow-clone the top Tier-1 candidates into the content-addressed cache",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClone,
}

var cloneOut string

func init() {
	cloneCmd.Flags().StringVar(&cloneOut, "out", "", "output directory (default: .scout under path)")
	rootCmd.AddCommand(cloneCmd)
}

func runClone(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	outDir := cloneOut
	if outDir == "" {
		outDir = filepath.Join(absRoot, ".scout")
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
		return err
	}

	var ca artifact.CandidatesArtifact
	if err := artifact.ReadJSON(filepath.Join(outDir, "candidates.tier1.json"), &ca); err != nil {
		fail("reading candidates.tier1.json: %v (run discover first)", err)
		return err
	}

	resolver, err := newResolver()
	if err != nil {
		return err
	}

	step("cloning up to %d candidates", cfg.CloneBudget)
	results := clone.Run(cmd.Context(), newGit(), resolver, ca.Candidates, cfg.CloneBudget)

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
			fail("clone %s: %v", r.RepoID, r.Err)
		}
	}

	manifest := &artifact.CloneManifestArtifact{RunID: newRunID(), Timestamp: time.Now().UTC(), Entries: clone.Manifest(results)}
	if err := artifact.WriteJSON(filepath.Join(outDir, "clone-manifest.json"), manifest); err != nil {
		fail("writing clone-manifest.json: %v", err)
		return err
	}

	ok("cloned %d of %d candidates (%d failed)", len(manifest.Entries), len(results), failures)
	return nil
}
