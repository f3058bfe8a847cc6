package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"scout/internal/artifact"
	"scout/internal/discovery"
	"scout/internal/lanes"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [path]",
	Short: "Search a remote code host for candidates matching a scanned tree's targets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDiscover,
}

var (
	discoverOut      string
	discoverMaxPages int
)

func init() {
	discoverCmd.Flags().StringVar(&discoverOut, "out", "", "output directory (default: .scout under path)")
	discoverCmd.Flags().IntVar(&discoverMaxPages, "max-pages", 1, "pages fetched per search lane")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	outDir := discoverOut
	if outDir == "" {
		outDir = filepath.Join(absRoot, ".scout")
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
		return err
	}

	var ta artifact.TargetsArtifact
	if err := artifact.ReadJSON(filepath.Join(outDir, "targets.json"), &ta); err != nil {
		fail("reading targets.json: %v (run scan first)", err)
		return err
	}

	resolver, err := newResolver()
	if err != nil {
		return err
	}

	step("building search lanes")
	qf := lanes.QualityFilters{MinStars: cfg.MinStars, PushWithinDays: int(cfg.WindowDays)}
	laneSet := lanes.Build(ta.Targets, "", qf)

	step("searching %d lanes", len(laneSet))
	client := hostClientFromConfig(cfg)
	cache := discovery.FileCache{Resolver: resolver}
	dcfg := discovery.Config{
		WindowDays: cfg.WindowDays,
		Tier1Cap:   cfg.Tier1Cap,
		Weights:    cfg.Tier1Weights,
		Filters: discovery.FilterConfig{
			AllowedLicenses:  cfg.AllowedLicenses,
			ExcludedKeywords: cfg.ExcludedKeywords,
		},
		CacheTTL:             cfg.CacheTTL(),
		MaxPages:             discoverMaxPages,
		MaxBackoff:           cfg.MaxBackoff(),
		SteadyStateThreshold: 5,
		SteadyStateInterval:  500 * time.Millisecond,
	}
	candidates, results := discovery.Run(cmd.Context(), client, cache, laneSet, dcfg)

	failedLanes := 0
	for _, r := range results {
		if r.Err != nil {
			failedLanes++
		}
	}
	if failedLanes > 0 {
		fail("%d of %d lanes failed (run continues)", failedLanes, len(results))
	}

	ca := &artifact.CandidatesArtifact{RunID: newRunID(), Timestamp: time.Now().UTC(), Candidates: candidates}
	if err := artifact.WriteJSON(filepath.Join(outDir, "candidates.tier1.json"), ca); err != nil {
		fail("writing candidates.tier1.json: %v", err)
		return err
	}

	ok("discovered %d candidates across %d lanes", len(candidates), len(laneSet))
	return nil
}
