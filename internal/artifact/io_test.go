package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONRejectsInvalid(t *testing.T) {
	fp := &Fingerprint{} // missing RootPath
	err := WriteJSON(filepath.Join(t.TempDir(), "fingerprint.json"), fp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArtifactInvalid)
}

func TestWriteJSONThenReadJSONRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fingerprint.json")
	want := &Fingerprint{
		RootPath:  "/repo",
		CommitID:  "abc123",
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Languages: map[string]int{"go": 10},
		Markers:   []string{"go.mod"},
	}
	require.NoError(t, WriteJSON(path, want))

	var got Fingerprint
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, want.RootPath, got.RootPath)
	assert.Equal(t, want.CommitID, got.CommitID)
	assert.Equal(t, want.Languages, got.Languages)
	assert.Equal(t, want.Markers, got.Markers)
}

// TestArtifactsAreIdempotent covers spec.md §8: "re-running any stage on
// the same inputs produces byte-equal JSON except for timestamp fields
// and run-id."
func TestArtifactsAreIdempotent(t *testing.T) {
	build := func() *Fingerprint {
		return &Fingerprint{
			RootPath:  "/repo",
			Languages: map[string]int{"go": 3, "ts": 1},
			Markers:   []string{"go.mod", "package.json"},
		}
	}

	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.json")
	pathB := filepath.Join(dir, "b.json")
	require.NoError(t, WriteJSON(pathA, build()))
	require.NoError(t, WriteJSON(pathB, build()))

	var a, b Fingerprint
	require.NoError(t, ReadJSON(pathA, &a))
	require.NoError(t, ReadJSON(pathB, &b))
	assert.Equal(t, a, b)
}

func TestReadJSONRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	var fp Fingerprint
	err := ReadJSON(path, &fp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArtifactInvalid)
}

func TestReadJSONRejectsValidJSONFailingValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"root_path": "", "languages": {}, "markers": []}`), 0o644))

	var fp Fingerprint
	err := ReadJSON(path, &fp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArtifactInvalid)
}
