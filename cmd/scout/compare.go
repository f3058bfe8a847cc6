package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"scout/internal/artifact"
	"scout/internal/clone"
	"scout/internal/discovery"
	"scout/internal/fingerprint"
	"scout/internal/focus"
	"scout/internal/lanes"
	"scout/internal/modernity"
	"scout/internal/report"
	"scout/internal/score"
	"scout/internal/targets"
	"scout/internal/validate"
)

var compareCmd = &cobra.Command{
	Use:   "compare [path]",
	Short: "Run the full pipeline end to end and produce a ranked report",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCompare,
}

var (
	compareOut    string
	compareDigest bool
)

func init() {
	compareCmd.Flags().StringVar(&compareOut, "out", "", "output directory (default: .scout under path)")
	compareCmd.Flags().BoolVar(&compareDigest, "digest", false, "also emit a compact DIGEST.md/digest.json")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	outDir := compareOut
	if outDir == "" {
		outDir = filepath.Join(absRoot, ".scout")
	}

	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
		return err
	}
	resolver, err := newResolver()
	if err != nil {
		return err
	}
	runID := newRunID()

	step("fingerprinting %s", absRoot)
	fp, err := fingerprint.Scan(ctx, absRoot, newVCS())
	if err != nil {
		fail("scan: %v", err)
		return err
	}
	inferredTargets := targets.Infer(absRoot, fp, targets.DefaultDetectors())

	step("building search lanes")
	qf := lanes.QualityFilters{MinStars: cfg.MinStars, PushWithinDays: int(cfg.WindowDays)}
	laneSet := lanes.Build(inferredTargets, "", qf)

	step("searching %d lanes", len(laneSet))
	client := hostClientFromConfig(cfg)
	cache := discovery.FileCache{Resolver: resolver}
	candidates, laneResults := discovery.Run(ctx, client, cache, laneSet, discovery.Config{
		WindowDays: cfg.WindowDays,
		Tier1Cap:   cfg.Tier1Cap,
		Weights:    cfg.Tier1Weights,
		Filters: discovery.FilterConfig{
			AllowedLicenses:  cfg.AllowedLicenses,
			ExcludedKeywords: cfg.ExcludedKeywords,
		},
		CacheTTL:             cfg.CacheTTL(),
		MaxPages:             1,
		MaxBackoff:           cfg.MaxBackoff(),
		SteadyStateThreshold: 5,
		SteadyStateInterval:  500 * time.Millisecond,
	})
	for _, r := range laneResults {
		if r.Err != nil {
			fail("lane %s: %v", r.Lane.Name, r.Err)
		}
	}

	step("cloning up to %d candidates", cfg.CloneBudget)
	cloneResults := clone.Run(ctx, newGit(), resolver, candidates, cfg.CloneBudget)
	cloneEntries := clone.Manifest(cloneResults)
	licenseByRepo := make(map[string]string, len(candidates))
	for _, c := range candidates {
		licenseByRepo[c.RepoID] = c.License
	}

	structuralDetectors := validate.DefaultDetectors()
	modernityChecks := modernity.DefaultChecks()
	opts := focus.DefaultOptions()
	opts.MaxEntrypointsPerKind = cfg.MaxEntrypointsPerKind

	var results []artifact.ValidationResult
	var bundles []artifact.FocusBundle
	var provenances []artifact.Provenance
	for _, entry := range cloneEntries {
		step("validating %s", entry.RepoID)
		matched := validate.Run(entry.LocalPath, structuralDetectors)
		signals := modernity.Run(entry.LocalPath, modernityChecks)
		modernityScore := score.ModernityScore(signals)
		tier2 := score.Tier2(score.Tier2Inputs{
			Tier1Score:     entry.Tier1Score,
			StructuralHits: len(matched),
			ModernityScore: modernityScore,
		}, cfg.Tier2Weights)
		vr := artifact.ValidationResult{
			RepoID:               entry.RepoID,
			LocalPath:            entry.LocalPath,
			Matched:              matched,
			Signals:              signals,
			StructuralMatchCount: len(matched),
			ModernityScore:       modernityScore,
			Tier1Score:           entry.Tier1Score,
			Tier2Score:           tier2,
			FocusCandidates:      focusCandidatesFromMatched(matched),
		}
		results = append(results, vr)

		prov := focus.NewProvenance(vr, entry.URL, entry.CommitID, licenseByRepo[entry.RepoID], toolVersion, runID)
		bundle, prov := focus.Build(ctx, entry.LocalPath, vr, prov, opts)
		bundles = append(bundles, bundle)
		provenances = append(provenances, prov)
	}

	score.SortCandidatesDescending(candidates)
	ranked := make([]artifact.CandidateSummary, 0, len(results))
	byRepo := make(map[string]artifact.ValidationResult, len(results))
	for _, vr := range results {
		byRepo[vr.RepoID] = vr
	}
	for _, c := range candidates {
		vr, ok := byRepo[c.RepoID]
		if !ok {
			continue
		}
		kinds := make([]artifact.Kind, 0, len(vr.Matched))
		for _, m := range vr.Matched {
			kinds = append(kinds, m.Kind)
		}
		ranked = append(ranked, artifact.CandidateSummary{
			RepoID:               vr.RepoID,
			URL:                  c.URL,
			Tier1Score:           vr.Tier1Score,
			Tier2Score:           vr.Tier2Score,
			StructuralMatchCount: vr.StructuralMatchCount,
			ModernityScore:       vr.ModernityScore,
			MatchedKinds:         kinds,
		})
	}
	sortSummariesByTier2(ranked)

	languageKinds := make([]artifact.Kind, 0, len(inferredTargets))
	for _, t := range inferredTargets {
		languageKinds = append(languageKinds, t.Kind)
	}

	var top *artifact.CandidateSummary
	if len(ranked) > 0 {
		top = &ranked[0]
	}

	cr := artifact.CompareReport{
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Source: artifact.SourceSummary{
			RootPath:  absRoot,
			Languages: fp.Languages,
			Targets:   languageKinds,
		},
		Ranked: ranked,
		Pipeline: artifact.PipelineSummary{
			Discovered:        len(candidates),
			Cloned:            len(cloneEntries),
			Validated:         len(results),
			TopRecommendation: top,
		},
	}

	if err := artifact.WriteJSON(filepath.Join(outDir, "report.json"), &cr); err != nil {
		fail("writing report.json: %v", err)
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "REPORT.md"), []byte(report.Full(cr, results, bundles)), 0o644); err != nil {
		return err
	}

	if compareDigest {
		if err := os.WriteFile(filepath.Join(outDir, "DIGEST.md"), []byte(report.Digest(cr)), 0o644); err != nil {
			return err
		}
		if err := artifact.WriteJSON(filepath.Join(outDir, "digest.json"), &cr); err != nil {
			fail("writing digest.json: %v", err)
			return err
		}
	}

	ok("compared %d candidates, %d validated, top=%s", len(candidates), len(results), topRepoID(top))
	return nil
}

func topRepoID(top *artifact.CandidateSummary) string {
	if top == nil {
		return "none"
	}
	return top.RepoID
}

func sortSummariesByTier2(ranked []artifact.CandidateSummary) {
	for i := 1; i < len(ranked); i++ {
		j := i
		for j > 0 && (ranked[j].Tier2Score > ranked[j-1].Tier2Score ||
			(ranked[j].Tier2Score == ranked[j-1].Tier2Score && ranked[j].RepoID < ranked[j-1].RepoID)) {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
			j--
		}
	}
}
