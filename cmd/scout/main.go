// Command scout scans a source tree, discovers and validates candidate
// upstream repositories, and (experimentally) tracks them for drift
// over time.
//
// Grounded on cmd/vc's per-command-file cobra layout (each file owns a
// package-level *cobra.Command plus an init() that registers it on
// rootCmd); this package supplies the rootCmd/main.go the retrieved
// teacher tree never shipped.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Scan, discover, and track candidate repositories for a component spec",
	Long: `scout fingerprints a source tree, infers what kind of component it
resembles, searches a remote code host for comparable repositories,
clones and validates the strongest candidates, and bundles the result
into a focused, provenance-tagged report.

A longitudinal watch subsystem (track/watch/session/review) is
experimental: it polls tracked repositories for drift and builds
review sessions against the diffs it finds.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "accepted but has no effect: every command prints progress text")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
