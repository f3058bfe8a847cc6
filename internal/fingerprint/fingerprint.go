// Package fingerprint implements the Fingerprinter stage (spec.md
// §4.1): walk a source tree, classify files by language, collect
// marker files/directories, and resolve the current commit id.
//
// Grounded on internal/health/build_modernizer.go's scanBuildFiles walk
// shape and internal/health/utils.go's ShouldExcludePath, generalized
// through internal/walkutil; commit resolution is grounded on
// internal/git/git.go's hardened subprocess pattern via internal/vcs.
package fingerprint

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"scout/internal/artifact"
	"scout/internal/walkutil"
)

const maxDepth = 10

// extensionLanguages is the fixed extension→language table spec.md
// §4.1 requires. Matching is by lowercase extension.
var extensionLanguages = map[string]string{
	".go":    "go",
	".ts":    "typescript",
	".tsx":   "typescript",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".py":    "python",
	".rb":    "ruby",
	".rs":    "rust",
	".java":  "java",
	".kt":    "kotlin",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".php":   "php",
	".sh":    "shell",
	".bash":  "shell",
	".swift": "swift",
	".scala": "scala",
	".ex":    "elixir",
	".exs":   "elixir",
	".lua":   "lua",
	".md":    "markdown",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
	".toml":  "toml",
}

// markerNames is the fixed list of files/directories recognized as
// markers, checked during the walk without any content inspection.
var markerNames = map[string]bool{
	"SKILL.md":          true,
	".claude":           true,
	"package.json":      true,
	"go.mod":            true,
	"pyproject.toml":    true,
	"Cargo.toml":        true,
	"Gemfile":           true,
	"requirements.txt":  true,
	"Dockerfile":        true,
	"manifest.json":     true,
	".mcp.json":         true,
	"pom.xml":           true,
	"build.gradle":      true,
	"composer.json":     true,
}

// CommitResolver resolves the current commit id for a root directory.
// Implemented by internal/vcs; kept as an interface here so the
// Fingerprinter never imports a concrete VCS backend directly.
type CommitResolver interface {
	CurrentCommitID(ctx context.Context, root string) (string, error)
}

// Scan walks root and produces a Fingerprint. Commit resolution
// failure is swallowed per spec.md §4.1: an absent commit id, never an
// error.
func Scan(ctx context.Context, root string, resolver CommitResolver) (*artifact.Fingerprint, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	ignorePatterns, err := walkutil.LoadIgnoreFile(filepath.Join(absRoot, ".gitignore"))
	if err != nil {
		return nil, err
	}
	deny := append(append([]string{}, walkutil.DefaultDenyList...), ignorePatterns...)

	languages := make(map[string]int)
	markerSet := make(map[string]bool)

	walkErr := walkutil.Walk(absRoot, walkutil.Options{MaxDepth: maxDepth, DenyPatterns: deny}, func(e walkutil.Entry) bool {
		base := filepath.Base(e.RelPath)
		if markerNames[base] {
			markerSet[base] = true
		}
		ext := strings.ToLower(filepath.Ext(e.RelPath))
		if lang, ok := extensionLanguages[ext]; ok {
			languages[lang]++
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	// Marker directories (e.g. ".claude") are not surfaced by Walk as
	// files, so check for them explicitly at the root only — markers
	// are shallow, structural signals, not deep scans.
	for name := range markerNames {
		if !markerSet[name] {
			if isDir, ok := dirExists(absRoot, name); ok && isDir {
				markerSet[name] = true
			}
		}
	}

	markers := make([]string, 0, len(markerSet))
	for m := range markerSet {
		markers = append(markers, m)
	}
	sort.Strings(markers)

	commitID := ""
	if resolver != nil {
		if id, err := resolver.CurrentCommitID(ctx, absRoot); err == nil {
			commitID = id
		}
	}

	return &artifact.Fingerprint{
		RootPath:  absRoot,
		CommitID:  commitID,
		Timestamp: time.Now().UTC(),
		Languages: languages,
		Markers:   markers,
	}, nil
}
