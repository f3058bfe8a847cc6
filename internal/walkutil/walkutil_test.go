package walkutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestShouldExcludePathMatchesDirectoryPrefix(t *testing.T) {
	assert.True(t, ShouldExcludePath("node_modules/pkg/index.js", false, DefaultDenyList))
	assert.True(t, ShouldExcludePath("node_modules", true, DefaultDenyList))
}

func TestShouldExcludePathMatchesNestedDirectory(t *testing.T) {
	assert.True(t, ShouldExcludePath("src/vendor/pkg.go", false, DefaultDenyList))
}

func TestShouldExcludePathAllowsOrdinaryPath(t *testing.T) {
	assert.False(t, ShouldExcludePath("src/main.go", false, DefaultDenyList))
}

func TestLoadIgnoreFileParsesPatternsAndSkipsComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".scoutignore")
	content := "# comment\n\n*.log\nbuild/\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	patterns, err := LoadIgnoreFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.log", "build/"}, patterns)
}

func TestLoadIgnoreFileMissingIsNotAnError(t *testing.T) {
	patterns, err := LoadIgnoreFile(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, patterns)
}

func TestWalkYieldsFilesRespectingDenyList(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":                   "package main",
		"node_modules/pkg/index.js": "module.exports = {}",
	})

	var seen []string
	err := Walk(root, Options{DenyPatterns: DefaultDenyList}, func(e Entry) bool {
		seen = append(seen, e.RelPath)
		return true
	})
	require.NoError(t, err)
	assert.Contains(t, seen, "main.go")
	assert.NotContains(t, seen, "node_modules/pkg/index.js")
}

func TestWalkRespectsMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/b/c/deep.go": "package c",
		"shallow.go":    "package root",
	})

	var seen []string
	err := Walk(root, Options{MaxDepth: 1}, func(e Entry) bool {
		seen = append(seen, e.RelPath)
		return true
	})
	require.NoError(t, err)
	assert.Contains(t, seen, "shallow.go")
	assert.NotContains(t, seen, "a/b/c/deep.go")
}

func TestWalkStopsEarlyWhenVisitReturnsFalse(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go": "package a",
		"b.go": "package b",
	})

	count := 0
	err := Walk(root, Options{}, func(e Entry) bool {
		count++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWalkRespectsMaxDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/one.go": "package a",
		"b/two.go": "package b",
		"c/three.go": "package c",
	})

	var seen []string
	err := Walk(root, Options{MaxDirs: 1}, func(e Entry) bool {
		seen = append(seen, e.RelPath)
		return true
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(seen), 1)
}
