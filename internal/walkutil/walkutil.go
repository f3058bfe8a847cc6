// Package walkutil holds the deny-list-aware, depth-capped directory
// walk shared by the Fingerprinter (§4.1) and the Focus Bundler (§4.9).
// Both stages need "walk a tree, skip build artifacts/VCS metadata/
// virtualenvs/caches, respect an ignore file, cap depth" — this package
// is the one place that logic lives instead of being written twice.
//
// Grounded on internal/health/utils.go:ShouldExcludePath and the scan
// loop in internal/health/build_modernizer.go:scanBuildFiles.
package walkutil

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDenyList is the internal deny-list spec.md §4.1 requires:
// build artifacts, VCS metadata, virtualenvs, caches.
var DefaultDenyList = []string{
	".git/",
	".hg/",
	".svn/",
	"node_modules/",
	"vendor/",
	"venv/",
	".venv/",
	"__pycache__/",
	".pytest_cache/",
	".mypy_cache/",
	".tox/",
	"dist/",
	"build/",
	"target/",
	".cache/",
	".next/",
	".nuxt/",
	"bin/",
	"obj/",
}

// ShouldExcludePath reports whether relPath matches any pattern in
// patterns, using the same component-boundary matching rules as the
// teacher's ShouldExcludePath: a directory prefix, a directory
// appearing anywhere after a separator, or a filename suffix.
func ShouldExcludePath(relPath string, isDir bool, patterns []string) bool {
	dirPath := relPath
	if isDir {
		dirPath = relPath + "/"
	}
	for _, pattern := range patterns {
		if strings.HasPrefix(dirPath, pattern) {
			return true
		}
		if strings.Contains(dirPath, "/"+pattern) {
			return true
		}
		if !strings.HasSuffix(pattern, "/") && strings.HasSuffix(relPath, pattern) {
			return true
		}
	}
	return false
}

// LoadIgnoreFile reads a simple .gitignore-style file (one pattern per
// line, "#" comments, blank lines skipped) and returns its patterns.
// A missing file yields an empty, non-error result: an ignore file is
// optional input, not a required one.
func LoadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

// Entry is one file discovered by Walk.
type Entry struct {
	RelPath string
	AbsPath string
	Size    int64
	IsDir   bool
	Depth   int
}

// Options configures a depth-budgeted walk.
type Options struct {
	MaxDepth     int      // 0 means unlimited
	DenyPatterns []string // merged with DefaultDenyList by callers that want it
	MaxDirs      int      // 0 means unlimited; counts directories visited
	MaxFilesDir  int      // 0 means unlimited; caps files yielded per directory
}

// Walk walks root, yielding files (not directories) that survive the
// deny-list and depth cap, calling visit for each. It stops early and
// returns nil if visit returns false.
func Walk(root string, opts Options, visit func(Entry) bool) error {
	dirsVisited := 0
	filesPerDir := make(map[string]int)
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint: the teacher's walkers skip unreadable entries rather than aborting
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		depth := strings.Count(relPath, "/") + 1

		if ShouldExcludePath(relPath, d.IsDir(), opts.DenyPatterns) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			dirsVisited++
			if opts.MaxDirs > 0 && dirsVisited > opts.MaxDirs {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		if opts.MaxFilesDir > 0 {
			parent := filepath.Dir(path)
			if filesPerDir[parent] >= opts.MaxFilesDir {
				return nil
			}
			filesPerDir[parent]++
		}

		entry := Entry{RelPath: relPath, AbsPath: path, Size: info.Size(), IsDir: false, Depth: depth}
		if !visit(entry) {
			return filepath.SkipAll
		}
		return nil
	})
}
