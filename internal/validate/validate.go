// Package validate implements the Structural Validator (spec.md §4.6):
// run a fixed detector set over each clone, collecting evidence and
// default focus roots per matched kind, never doing content-executable
// analysis.
package validate

import (
	"os"
	"path/filepath"

	"scout/internal/artifact"
)

// Detector is a closed-set rule over filesystem presence and manifest
// contents for one repository kind.
type Detector interface {
	Kind() artifact.Kind
	Detect(repoPath string) (evidence []string, focusRoots []string)
}

// DefaultDetectors returns the fixed set spec.md §4.6 requires, with
// the library detector last. Order does not gate anything: Run
// evaluates every detector, the library detector included, over every
// repo independently.
func DefaultDetectors() []Detector {
	return []Detector{
		mcpServerDetector{},
		cliDetector{},
		skillDetector{},
		hookDetector{},
		pluginDetector{},
		libraryDetector{},
	}
}

// Run validates repoPath against detectors, returning one MatchedTarget
// per detector that produced ≥1 piece of evidence.
func Run(repoPath string, detectors []Detector) []artifact.MatchedTarget {
	var matched []artifact.MatchedTarget
	for _, d := range detectors {
		evidence, roots := d.Detect(repoPath)
		if len(evidence) == 0 {
			continue
		}
		if len(roots) == 0 {
			roots = defaultFocusRoots[d.Kind()]
		}
		matched = append(matched, artifact.MatchedTarget{Kind: d.Kind(), Evidence: evidence, FocusRoots: roots})
	}
	return matched
}

var defaultFocusRoots = map[artifact.Kind][]string{
	artifact.KindMCPServer: {"src", "server"},
	artifact.KindCLI:       {"cmd", "bin", "src"},
	artifact.KindSkill:     {"."},
	artifact.KindHook:      {".claude/hooks"},
	artifact.KindPlugin:    {"plugins", "."},
	artifact.KindLibrary:   {"src", "lib", "."},
}

func exists(repoPath, rel string) bool {
	_, err := os.Stat(filepath.Join(repoPath, rel))
	return err == nil
}
