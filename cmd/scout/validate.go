package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"scout/internal/artifact"
	"scout/internal/modernity"
	"scout/internal/score"
	"scout/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Run structural and modernity checks over cloned candidates and compute Tier-2 scores",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

var validateOut string

func init() {
	validateCmd.Flags().StringVar(&validateOut, "out", "", "output directory (default: .scout under path)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	outDir := validateOut
	if outDir == "" {
		outDir = filepath.Join(absRoot, ".scout")
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
		return err
	}

	var manifest artifact.CloneManifestArtifact
	if err := artifact.ReadJSON(filepath.Join(outDir, "clone-manifest.json"), &manifest); err != nil {
		fail("reading clone-manifest.json: %v (run clone first)", err)
		return err
	}

	structuralDetectors := validate.DefaultDetectors()
	modernityChecks := modernity.DefaultChecks()

	results := make([]artifact.ValidationResult, 0, len(manifest.Entries))
	for _, entry := range manifest.Entries {
		step("validating %s", entry.RepoID)
		matched := validate.Run(entry.LocalPath, structuralDetectors)
		signals := modernity.Run(entry.LocalPath, modernityChecks)
		modernityScore := score.ModernityScore(signals)
		tier2 := score.Tier2(score.Tier2Inputs{
			Tier1Score:     entry.Tier1Score,
			StructuralHits: len(matched),
			ModernityScore: modernityScore,
		}, cfg.Tier2Weights)

		results = append(results, artifact.ValidationResult{
			RepoID:               entry.RepoID,
			LocalPath:            entry.LocalPath,
			Matched:              matched,
			Signals:              signals,
			StructuralMatchCount: len(matched),
			ModernityScore:       modernityScore,
			Tier1Score:           entry.Tier1Score,
			Tier2Score:           tier2,
			FocusCandidates:      focusCandidatesFromMatched(matched),
		})

		if err := artifact.WriteJSON(filepath.Join(outDir, "validate", entry.RepoID+".json"), &results[len(results)-1]); err != nil {
			fail("writing per-repo validation for %s: %v", entry.RepoID, err)
			return err
		}
	}

	summary := &artifact.ValidateSummaryArtifact{RunID: newRunID(), Timestamp: time.Now().UTC(), Results: results}
	if err := artifact.WriteJSON(filepath.Join(outDir, "validate-summary.json"), summary); err != nil {
		fail("writing validate-summary.json: %v", err)
		return err
	}

	ok("validated %d repositories", len(results))
	return nil
}

// focusCandidatesFromMatched reuses each matched target's focus roots as
// its initial candidate paths; the Focus Bundler's fixed per-kind
// priority list fills in specific entrypoint files the structural
// detectors themselves never resolve.
func focusCandidatesFromMatched(matched []artifact.MatchedTarget) []artifact.KindPaths {
	out := make([]artifact.KindPaths, 0, len(matched))
	for _, m := range matched {
		out = append(out, artifact.KindPaths{Kind: m.Kind, Paths: m.FocusRoots})
	}
	return out
}
