package targets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scout/internal/artifact"
)

// TestInferScenario1 is spec.md §8 end-to-end scenario 1: a tree
// containing SKILL.md and .claude/hooks/ yields targets including
// kinds skill and hook; every confidence has at most two decimal
// places and none exceeds 1.0.
func TestInferScenario1(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "SKILL.md"), []byte("# a skill"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".claude", "hooks"), 0o755))

	fp := &artifact.Fingerprint{
		RootPath: root,
		Markers:  []string{"SKILL.md", ".claude"},
	}

	got := Infer(root, fp, DefaultDetectors())

	kinds := make(map[artifact.Kind]bool)
	for _, tgt := range got {
		kinds[tgt.Kind] = true
		assert.LessOrEqual(t, tgt.Confidence, 1.0)
		assert.Equal(t, artifact.Round2(tgt.Confidence), tgt.Confidence)
	}
	assert.True(t, kinds[artifact.KindSkill])
	assert.True(t, kinds[artifact.KindHook])
}

func TestInferDropsBelowMinConfidence(t *testing.T) {
	root := t.TempDir()
	fp := &artifact.Fingerprint{RootPath: root}
	got := Infer(root, fp, DefaultDetectors())
	assert.Empty(t, got)
}

func TestInferOrderingIsDeterministic(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "SKILL.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cmd"), 0o755))

	fp := &artifact.Fingerprint{
		RootPath:  root,
		Markers:   []string{"SKILL.md", "go.mod"},
		Languages: map[string]int{"go": 5},
	}

	a := Infer(root, fp, DefaultDetectors())
	b := Infer(root, fp, DefaultDetectors())
	assert.Equal(t, a, b)

	for i := 1; i < len(a); i++ {
		if a[i-1].Confidence == a[i].Confidence {
			assert.LessOrEqual(t, a[i-1].Kind, a[i].Kind)
		} else {
			assert.Greater(t, a[i-1].Confidence, a[i].Confidence)
		}
	}
}

func TestInferLibraryFallback(t *testing.T) {
	root := t.TempDir()
	fp := &artifact.Fingerprint{
		RootPath:  root,
		Markers:   []string{"go.mod"},
		Languages: map[string]int{"go": 1},
	}
	got := Infer(root, fp, DefaultDetectors())
	require.NotEmpty(t, got)
	found := false
	for _, tgt := range got {
		if tgt.Kind == artifact.KindLibrary {
			found = true
		}
	}
	assert.True(t, found)
}
