package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scout/internal/artifact"
	"scout/internal/focus"
)

var focusCmd = &cobra.Command{
	Use:   "focus [path]",
	Short: "Bundle entrypoints and scoped files for each validated candidate",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFocus,
}

var focusOut string

func init() {
	focusCmd.Flags().StringVar(&focusOut, "out", "", "output directory (default: .scout under path)")
	rootCmd.AddCommand(focusCmd)
}

func runFocus(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	outDir := focusOut
	if outDir == "" {
		outDir = filepath.Join(absRoot, ".scout")
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
		return err
	}

	var summary artifact.ValidateSummaryArtifact
	if err := artifact.ReadJSON(filepath.Join(outDir, "validate-summary.json"), &summary); err != nil {
		fail("reading validate-summary.json: %v (run validate first)", err)
		return err
	}
	var manifest artifact.CloneManifestArtifact
	if err := artifact.ReadJSON(filepath.Join(outDir, "clone-manifest.json"), &manifest); err != nil {
		fail("reading clone-manifest.json: %v (run clone first)", err)
		return err
	}
	var candidates artifact.CandidatesArtifact
	if err := artifact.ReadJSON(filepath.Join(outDir, "candidates.tier1.json"), &candidates); err != nil {
		fail("reading candidates.tier1.json: %v (run discover first)", err)
		return err
	}

	byRepoClone := make(map[string]artifact.CloneEntry, len(manifest.Entries))
	for _, e := range manifest.Entries {
		byRepoClone[e.RepoID] = e
	}
	licenseByRepo := make(map[string]string, len(candidates.Candidates))
	for _, c := range candidates.Candidates {
		licenseByRepo[c.RepoID] = c.License
	}

	runID := newRunID()
	opts := focus.DefaultOptions()
	opts.MaxEntrypointsPerKind = cfg.MaxEntrypointsPerKind

	var bundles []artifact.FocusBundle
	var provenances []artifact.Provenance
	for _, vr := range summary.Results {
		entry, ok := byRepoClone[vr.RepoID]
		if !ok {
			continue
		}
		step("bundling %s", vr.RepoID)
		prov := focus.NewProvenance(vr, entry.URL, entry.CommitID, licenseByRepo[vr.RepoID], toolVersion, runID)
		bundle, prov := focus.Build(cmd.Context(), entry.LocalPath, vr, prov, opts)

		owner, name := splitOwnerRepo(vr.RepoID)
		repoDir := filepath.Join(outDir, "focus", owner, name)
		if err := artifact.WriteJSON(filepath.Join(repoDir, "FOCUS.json"), &bundle); err != nil {
			fail("writing FOCUS.json for %s: %v", vr.RepoID, err)
			return err
		}
		if err := artifact.WriteJSON(filepath.Join(repoDir, "PROVENANCE.json"), &prov); err != nil {
			fail("writing PROVENANCE.json for %s: %v", vr.RepoID, err)
			return err
		}
		if err := os.WriteFile(filepath.Join(repoDir, "FOCUS.md"), []byte(renderFocusMD(bundle)), 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(repoDir, "RUN_HINTS.md"), []byte(renderRunHintsMD(vr, bundle)), 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(repoDir, "PROVENANCE.md"), []byte(renderProvenanceMD(prov)), 0o644); err != nil {
			return err
		}

		bundles = append(bundles, bundle)
		provenances = append(provenances, prov)
	}

	index := &artifact.FocusIndexArtifact{RunID: runID, Timestamp: time.Now().UTC(), Bundles: bundles, Provenance: provenances}
	if err := artifact.WriteJSON(filepath.Join(outDir, "focus-index.json"), index); err != nil {
		fail("writing focus-index.json: %v", err)
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "focus-index.md"), []byte(renderFocusIndexMD(index)), 0o644); err != nil {
		return err
	}

	ok("bundled %d repositories", len(bundles))
	return nil
}

func splitOwnerRepo(repoID string) (owner, name string) {
	for i := len(repoID) - 1; i >= 0; i-- {
		if repoID[i] == '/' {
			return repoID[:i], repoID[i+1:]
		}
	}
	return "", repoID
}

func renderFocusMD(b artifact.FocusBundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Focus: %s\n\n", b.RepoID)
	sb.WriteString("## Entrypoints\n\n")
	for _, e := range b.Entrypoints {
		fmt.Fprintf(&sb, "- `%s` (%s): %s\n", e.Path, e.Kind, e.Reason)
	}
	sb.WriteString("\n## Scope roots\n\n")
	for _, r := range b.ScopeRoots {
		fmt.Fprintf(&sb, "- %s\n", r)
	}
	fmt.Fprintf(&sb, "\n## Files (%d)\n\n", len(b.Files))
	for _, f := range b.Files {
		fmt.Fprintf(&sb, "- %s (%d bytes)\n", f.Path, f.SizeBytes)
	}
	return sb.String()
}

func renderRunHintsMD(vr artifact.ValidationResult, b artifact.FocusBundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run hints: %s\n\n", vr.RepoID)
	fmt.Fprintf(&sb, "Tier-1 %.2f, Tier-2 %.2f, modernity %.2f, structural matches %d.\n\n", vr.Tier1Score, vr.Tier2Score, vr.ModernityScore, vr.StructuralMatchCount)
	if len(b.Entrypoints) > 0 {
		sb.WriteString("Start reading at:\n\n")
		for _, e := range b.Entrypoints {
			fmt.Fprintf(&sb, "1. `%s`\n", e.Path)
		}
	}
	return sb.String()
}

func renderProvenanceMD(p artifact.Provenance) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Provenance: %s\n\n", p.RepoID)
	fmt.Fprintf(&sb, "- URL: %s\n", p.URL)
	fmt.Fprintf(&sb, "- Commit: %s\n", p.CommitID)
	fmt.Fprintf(&sb, "- License: %s\n", p.License)
	fmt.Fprintf(&sb, "- Tier-1 / Tier-2: %.2f / %.2f\n", p.Tier1Score, p.Tier2Score)
	fmt.Fprintf(&sb, "- Tool version: %s\n", p.ToolVersion)
	fmt.Fprintf(&sb, "- Run: %s at %s\n", p.RunID, p.Timestamp.Format(time.RFC3339))
	return sb.String()
}

func renderFocusIndexMD(idx *artifact.FocusIndexArtifact) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Focus index (run %s)\n\n", idx.RunID)
	sb.WriteString("| Repository | Entrypoints | Files |\n|---|---|---|\n")
	for _, b := range idx.Bundles {
		fmt.Fprintf(&sb, "| %s | %d | %d |\n", b.RepoID, len(b.Entrypoints), len(b.Files))
	}
	return sb.String()
}
