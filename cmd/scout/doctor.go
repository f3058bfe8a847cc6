package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scout/internal/review"
	"scout/internal/watch/store"
)

func checkGitBinary() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git not found on PATH: %w", err)
	}
	return nil
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment scout needs: git, cache directory, config, and watch store",
	Long: `Run a set of checks that diagnose common environment problems before a scan,
discover, or watch run-once invocation hits them as a confusing mid-pipeline error.

Exit codes:
  0 - all checks passed
  1 - one or more non-critical checks failed
  2 - a critical failure prevents scout from running at all`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Println("Running scout health checks...")
	fmt.Println()

	var failures, warnings, criticalFailures []string

	fmt.Printf("%s git availability\n", cyan("->"))
	if gitErr := checkGitBinary(); gitErr != nil {
		criticalFailures = append(criticalFailures, gitErr.Error())
		fmt.Printf("  %s %v\n", red("x"), gitErr)
	} else {
		fmt.Printf("  %s git found on PATH\n", green("v"))
	}

	fmt.Printf("%s cache directory\n", cyan("->"))
	root, err := cacheRoot()
	if err != nil {
		criticalFailures = append(criticalFailures, fmt.Sprintf("resolving cache directory: %v", err))
		fmt.Printf("  %s cannot resolve cache directory: %v\n", red("x"), err)
	} else if err := os.MkdirAll(root, 0o755); err != nil {
		failures = append(failures, fmt.Sprintf("cache directory %s not writable: %v", root, err))
		fmt.Printf("  %s %s is not writable: %v\n", red("x"), root, err)
	} else {
		fmt.Printf("  %s %s is writable\n", green("v"), root)
	}

	fmt.Printf("%s configuration\n", cyan("->"))
	cfg, err := loadConfig()
	if err != nil {
		failures = append(failures, fmt.Sprintf("config: %v", err))
		fmt.Printf("  %s %v\n", red("x"), err)
	} else {
		fmt.Printf("  %s config loaded (tier1_cap=%d, clone_budget=%d)\n", green("v"), cfg.Tier1Cap, cfg.CloneBudget)
		if cfg.RemoteAPIToken == "" {
			warnings = append(warnings, "no remote API token configured; discover will run unauthenticated and may be rate-limited sooner")
			fmt.Printf("  %s no remote API token configured\n", yellow("!"))
		}
	}

	fmt.Printf("%s watch store\n", cyan("->"))
	if root != "" {
		dbPath := filepath.Join(root, "runs", "watch", "scout.db")
		if st, err := store.Open(dbPath); err != nil {
			failures = append(failures, fmt.Sprintf("watch store: %v", err))
			fmt.Printf("  %s cannot open %s: %v\n", red("x"), dbPath, err)
		} else {
			fmt.Printf("  %s %s opens cleanly\n", green("v"), dbPath)
			st.Close()
		}
	}

	fmt.Printf("%s reviewer tool\n", cyan("->"))
	if review.Available("claude") {
		fmt.Printf("  %s reviewer command %q found on PATH\n", green("v"), "claude")
	} else {
		warnings = append(warnings, `reviewer command "claude" not found on PATH; review/watch --auto-review will fail until one is configured`)
		fmt.Printf("  %s reviewer command %q not found on PATH\n", yellow("!"), "claude")
	}

	fmt.Println()
	if len(criticalFailures) > 0 {
		fmt.Printf("%s %d critical failure(s) prevent scout from running\n", red("x"), len(criticalFailures))
		os.Exit(2)
	}
	if len(failures) > 0 {
		fmt.Printf("%s %d check(s) failed, %d warning(s)\n", red("x"), len(failures), len(warnings))
		os.Exit(1)
	}
	fmt.Printf("%s all checks passed (%d warning(s))\n", green("v"), len(warnings))
	return nil
}
