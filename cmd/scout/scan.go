package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"scout/internal/artifact"
	"scout/internal/fingerprint"
	"scout/internal/targets"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Fingerprint a source tree and infer its component targets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

var scanOut string

func init() {
	scanCmd.Flags().StringVar(&scanOut, "out", "", "output directory (default: .scout under the scanned root)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	outDir := scanOut
	if outDir == "" {
		outDir = filepath.Join(absRoot, ".scout")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	step("fingerprinting %s", absRoot)
	fp, err := fingerprint.Scan(ctx, absRoot, newVCS())
	if err != nil {
		fail("scan: %v", err)
		return err
	}
	if err := artifact.WriteJSON(filepath.Join(outDir, "fingerprint.json"), fp); err != nil {
		fail("writing fingerprint.json: %v", err)
		return err
	}

	step("inferring component targets")
	inferred := targets.Infer(absRoot, fp, targets.DefaultDetectors())
	ta := &artifact.TargetsArtifact{RootPath: absRoot, Timestamp: time.Now().UTC(), Targets: inferred}
	if err := artifact.WriteJSON(filepath.Join(outDir, "targets.json"), ta); err != nil {
		fail("writing targets.json: %v", err)
		return err
	}

	ok("scanned %s: %d languages, %d markers, %d targets", absRoot, len(fp.Languages), len(fp.Markers), len(inferred))
	return nil
}
