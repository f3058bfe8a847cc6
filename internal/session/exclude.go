package session

// DefaultExclusions is the fixed pathspec exclusion set (spec.md
// §4.14 step 4: "lockfiles, binaries, build outputs, archives,
// generated files"), merged with any user/per-repo ignore patterns
// before every diff invocation so they can never leak into a session
// even when the commit range touches them (spec.md §8: diff hygiene).
var DefaultExclusions = []string{
	// lockfiles
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "Cargo.lock",
	"go.sum", "poetry.lock", "Gemfile.lock", "composer.lock",
	// binaries
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.ico", "*.webp", "*.pdf",
	"*.so", "*.dylib", "*.dll", "*.exe", "*.wasm",
	// build outputs
	"dist/**", "build/**", "out/**", "target/**", ".next/**",
	// archives
	"*.zip", "*.tar.gz", "*.tgz", "*.tar", "*.gz",
	// generated
	"*.min.js", "*.min.css", "*_pb.go", "*.generated.*",
}

func mergeExclusions(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	merged := make([]string, 0, len(base)+len(extra))
	for _, p := range base {
		if !seen[p] {
			seen[p] = true
			merged = append(merged, p)
		}
	}
	for _, p := range extra {
		if p != "" && !seen[p] {
			seen[p] = true
			merged = append(merged, p)
		}
	}
	return merged
}
