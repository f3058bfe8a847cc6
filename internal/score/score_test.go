package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scout/internal/artifact"
)

// TestTier1Scenario2 is spec.md §8 end-to-end scenario 2, verbatim.
func TestTier1Scenario2(t *testing.T) {
	w := DefaultWeights()

	hot := Tier1(Tier1Inputs{
		DaysSincePush: 0,
		WindowDays:    180,
		Stars:         1000,
		Forks:         100,
		LaneHits:      3,
	}, w)
	assert.Greater(t, hot, 0.7)

	cold := Tier1(Tier1Inputs{
		DaysSincePush: 60,
		WindowDays:    180,
		Stars:         100,
		Forks:         10,
		LaneHits:      1,
	}, w)
	assert.Less(t, cold, 0.6)
}

func TestTier1Bounds(t *testing.T) {
	w := DefaultWeights()
	for _, days := range []float64{0, 10, 100, 1000, 100000} {
		for _, stars := range []int{0, 1, 1000, 1000000} {
			got := Tier1(Tier1Inputs{DaysSincePush: days, WindowDays: 90, Stars: stars, Forks: stars, LaneHits: 5}, w)
			require.GreaterOrEqual(t, got, 0.0)
			require.LessOrEqual(t, got, 1.0)
			assert.Equal(t, artifact.Round2(got), got)
		}
	}
}

func TestTier1Determinism(t *testing.T) {
	w := DefaultWeights()
	in := Tier1Inputs{DaysSincePush: 5, WindowDays: 90, Stars: 42, Forks: 7, LaneHits: 2}
	a := Tier1(in, w)
	b := Tier1(in, w)
	assert.Equal(t, a, b)
}

func TestRoundingNeverDrifts(t *testing.T) {
	// spec.md §8: "confidences are rounded so that 0.4 + 0.2 produces
	// exactly 0.6".
	got := artifact.Round2(0.4 + 0.2)
	assert.Equal(t, 0.6, got)
}

func TestTier2Clamped(t *testing.T) {
	w := DefaultTier2Weights()
	got := Tier2(Tier2Inputs{Tier1Score: 0.9, StructuralHits: 10, ModernityScore: 1.0}, w)
	assert.LessOrEqual(t, got, 1.0)
}

func TestTier2TieBreakOnTier1(t *testing.T) {
	w := DefaultTier2Weights()
	a := Tier2(Tier2Inputs{Tier1Score: 0.5, StructuralHits: 2, ModernityScore: 0.5}, w)
	b := Tier2(Tier2Inputs{Tier1Score: 0.6, StructuralHits: 2, ModernityScore: 0.5}, w)
	assert.Less(t, a, b)
}

func TestModernityScoreEmpty(t *testing.T) {
	assert.Equal(t, 0.0, ModernityScore(nil))
}

func TestModernityScorePartial(t *testing.T) {
	signals := []artifact.ModernitySignal{
		{Name: "esm", Passed: true},
		{Name: "strict", Passed: false},
		{Name: "lint", Passed: true},
		{Name: "lockfile", Passed: true},
	}
	assert.Equal(t, 0.75, ModernityScore(signals))
}

func TestSortCandidatesDescendingStableTieBreak(t *testing.T) {
	candidates := []artifact.Candidate{
		{RepoID: "b/b", Tier1Score: 0.5},
		{RepoID: "a/a", Tier1Score: 0.5},
		{RepoID: "c/c", Tier1Score: 0.9},
	}
	SortCandidatesDescending(candidates)
	require.Len(t, candidates, 3)
	assert.Equal(t, "c/c", candidates[0].RepoID)
	assert.Equal(t, "a/a", candidates[1].RepoID)
	assert.Equal(t, "b/b", candidates[2].RepoID)
}
