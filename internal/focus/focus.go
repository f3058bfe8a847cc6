// Package focus implements the Focus Bundler (spec.md §4.9): resolve
// entrypoints per matched kind, deduplicate scope roots, and run a
// depth-budgeted walk to produce a Focus Bundle and its Provenance.
//
// Grounded on internal/walkutil (itself generalized from
// internal/health/build_modernizer.go's scan loop) for the
// depth-budgeted file selection.
package focus

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"scout/internal/artifact"
	"scout/internal/walkutil"
)

// Options configures entrypoint resolution and the scope walk.
type Options struct {
	MaxEntrypointsPerKind int
	MaxDirsPerTarget      int
	MaxFilesPerDir        int
	MaxDepth              int // spec.md §4.9: depth <= 5
	DenyPatterns          []string
	AllowedExtensions     []string // fixed allow-list
}

// DefaultOptions matches spec.md §4.9's stated bounds.
func DefaultOptions() Options {
	return Options{
		MaxEntrypointsPerKind: 3,
		MaxDirsPerTarget:      50,
		MaxFilesPerDir:        200,
		MaxDepth:              5,
		DenyPatterns:          walkutil.DefaultDenyList,
		AllowedExtensions: []string{
			".go", ".ts", ".tsx", ".js", ".jsx", ".py", ".rb", ".rs", ".java",
			".md", ".json", ".yaml", ".yml", ".toml",
		},
	}
}

// kindEntrypointPriority is the fixed per-kind priority list spec.md
// §4.9 step (b) requires, consulted after candidate paths from
// validation that actually exist on disk.
var kindEntrypointPriority = map[artifact.Kind][]string{
	artifact.KindMCPServer: {"src/server.ts", "src/server.js", "server.py", "main.go"},
	artifact.KindCLI:       {"cmd/main.go", "src/cli.ts", "cli.py", "bin/cli.js"},
	artifact.KindSkill:     {"SKILL.md"},
	artifact.KindHook:      {".claude/hooks/hook.sh", ".claude/hooks/hook.py"},
	artifact.KindPlugin:    {"plugin.json", "src/index.ts"},
	artifact.KindLibrary:   {"index.ts", "index.js", "__init__.py", "lib.rs"},
}

// Build produces the Focus Bundle and Provenance for one Validation
// Result.
func Build(ctx context.Context, repoPath string, vr artifact.ValidationResult, prov artifact.Provenance, opts Options) (artifact.FocusBundle, artifact.Provenance) {
	entrypoints := resolveEntrypoints(repoPath, vr, opts)
	scopeRoots := dedupScopeRoots(collectScopeRoots(vr))
	files := scopeWalk(repoPath, scopeRoots, opts)

	bundle := artifact.FocusBundle{
		RepoID:      vr.RepoID,
		Entrypoints: entrypoints,
		ScopeRoots:  scopeRoots,
		Files:       files,
	}
	return bundle, prov
}

func resolveEntrypoints(repoPath string, vr artifact.ValidationResult, opts Options) []artifact.Entrypoint {
	var entrypoints []artifact.Entrypoint
	seen := make(map[string]bool)
	limit := opts.MaxEntrypointsPerKind
	if limit <= 0 {
		limit = 3
	}

	add := func(kind artifact.Kind, path, reason string) bool {
		if seen[path] {
			return false
		}
		seen[path] = true
		entrypoints = append(entrypoints, artifact.Entrypoint{Kind: kind, Path: path, Reason: reason})
		return true
	}

	perKindCount := make(map[artifact.Kind]int)

	// (a) candidate paths from validation that exist on disk.
	for _, kp := range vr.FocusCandidates {
		for _, p := range kp.Paths {
			if perKindCount[kp.Kind] >= limit {
				break
			}
			if pathExists(repoPath, p) && add(kp.Kind, p, "candidate path from structural validation") {
				perKindCount[kp.Kind]++
			}
		}
	}

	// (b) fixed per-kind priority list.
	for _, m := range vr.Matched {
		if perKindCount[m.Kind] >= limit {
			continue
		}
		for _, p := range kindEntrypointPriority[m.Kind] {
			if perKindCount[m.Kind] >= limit {
				break
			}
			if pathExists(repoPath, p) && add(m.Kind, p, "fixed priority entrypoint for kind "+string(m.Kind)) {
				perKindCount[m.Kind]++
			}
		}
	}

	// (c) README as a library-kind entrypoint if not already included.
	if perKindCount[artifact.KindLibrary] < limit {
		for _, readme := range []string{"README.md", "Readme.md", "readme.md"} {
			if pathExists(repoPath, readme) {
				add(artifact.KindLibrary, readme, "README fallback entrypoint")
				break
			}
		}
	}

	return entrypoints
}

func collectScopeRoots(vr artifact.ValidationResult) []string {
	var roots []string
	for _, m := range vr.Matched {
		roots = append(roots, m.FocusRoots...)
	}
	return roots
}

// dedupScopeRoots drops any root that is a prefix of another (spec.md
// §4.9), keeping the shorter, more general root.
func dedupScopeRoots(roots []string) []string {
	unique := make(map[string]bool)
	for _, r := range roots {
		unique[filepath.Clean(r)] = true
	}
	cleaned := make([]string, 0, len(unique))
	for r := range unique {
		cleaned = append(cleaned, r)
	}
	sort.Strings(cleaned)

	var result []string
	for _, r := range cleaned {
		prefixed := false
		for _, kept := range result {
			if r == kept || strings.HasPrefix(r, kept+string(filepath.Separator)) {
				prefixed = true
				break
			}
		}
		if !prefixed {
			result = append(result, r)
		}
	}
	return result
}

func scopeWalk(repoPath string, scopeRoots []string, opts Options) []artifact.FocusFile {
	allowed := make(map[string]bool, len(opts.AllowedExtensions))
	for _, ext := range opts.AllowedExtensions {
		allowed[ext] = true
	}

	var files []artifact.FocusFile
	roots := scopeRoots
	if len(roots) == 0 {
		roots = []string{"."}
	}

	for _, root := range roots {
		absRoot := filepath.Join(repoPath, root)
		_ = walkutil.Walk(absRoot, walkutil.Options{
			MaxDepth:     opts.MaxDepth,
			DenyPatterns: opts.DenyPatterns,
			MaxDirs:      opts.MaxDirsPerTarget,
			MaxFilesDir:  opts.MaxFilesPerDir,
		}, func(e walkutil.Entry) bool {
			if allowed[strings.ToLower(filepath.Ext(e.RelPath))] {
				relToRepo := filepath.Join(root, e.RelPath)
				files = append(files, artifact.FocusFile{Path: relToRepo, SizeBytes: e.Size})
			}
			return true
		})
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].SizeBytes < files[j].SizeBytes })
	return files
}

func pathExists(repoPath, rel string) bool {
	_, err := os.Stat(filepath.Join(repoPath, rel))
	return err == nil
}

// NewProvenance builds an immutable Provenance record for a bundle.
func NewProvenance(vr artifact.ValidationResult, url, commitID, license, toolVersion, runID string) artifact.Provenance {
	return artifact.Provenance{
		RepoID:      vr.RepoID,
		URL:         url,
		CommitID:    commitID,
		License:     license,
		Tier1Score:  vr.Tier1Score,
		Tier2Score:  vr.Tier2Score,
		ToolVersion: toolVersion,
		RunID:       runID,
		Timestamp:   time.Now().UTC(),
	}
}
