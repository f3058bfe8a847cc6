package fingerprint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	commitID string
	err      error
}

func (f fakeResolver) CurrentCommitID(ctx context.Context, root string) (string, error) {
	return f.commitID, f.err
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// TestScanScenario1 is spec.md §8 end-to-end scenario 1: a tree
// containing SKILL.md and .claude/hooks/ yields targets including
// kinds skill and hook (checked in internal/targets), and here that
// the fingerprint itself records both markers.
func TestScanScenario1(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"SKILL.md":            "# a skill",
		".claude/hooks/pre.sh": "#!/bin/sh",
		"main.go":             "package main",
	})

	fp, err := Scan(context.Background(), root, fakeResolver{commitID: "deadbeef"})
	require.NoError(t, err)
	assert.Contains(t, fp.Markers, "SKILL.md")
	assert.Contains(t, fp.Markers, ".claude")
	assert.Equal(t, 1, fp.Languages["go"])
	assert.Equal(t, "deadbeef", fp.CommitID)
}

// TestScanStability is spec.md §8: "identical trees yield identical
// language counts and marker sets."
func TestScanStability(t *testing.T) {
	build := func() string {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"main.go":      "package main",
			"lib/util.go":  "package lib",
			"README.md":    "# hi",
			"package.json": "{}",
		})
		return root
	}

	rootA := build()
	rootB := build()

	fpA, err := Scan(context.Background(), rootA, nil)
	require.NoError(t, err)
	fpB, err := Scan(context.Background(), rootB, nil)
	require.NoError(t, err)

	assert.Equal(t, fpA.Languages, fpB.Languages)
	assert.Equal(t, fpA.Markers, fpB.Markers)
}

func TestScanSwallowsCommitResolutionFailure(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.go": "package main"})

	fp, err := Scan(context.Background(), root, fakeResolver{err: assert.AnError})
	require.NoError(t, err)
	assert.Empty(t, fp.CommitID)
}

func TestScanExcludesDenyListedDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"node_modules/pkg/index.js": "module.exports = {}",
		"main.go":                   "package main",
	})

	fp, err := Scan(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, fp.Languages["javascript"])
	assert.Equal(t, 1, fp.Languages["go"])
}

func TestScanValidates(t *testing.T) {
	root := t.TempDir()
	fp, err := Scan(context.Background(), root, nil)
	require.NoError(t, err)
	assert.NoError(t, fp.Validate())
}
