// Package score holds the pure scoring functions shared by the
// Discovery Engine (Tier-1) and the Tier-2 Scorer. Every function here
// is deterministic over its documented inputs and side-effect free, per
// spec.md §8's "score determinism" property.
package score

import (
	"math"

	"scout/internal/artifact"
)

// Weights are the configurable weights behind Tier-1 scoring (spec.md
// §4.4). Defaults sum to <= 1.0.
type Weights struct {
	Recency  float64
	Activity float64
	Lanes    float64
}

// DefaultWeights matches the defaults implied by end-to-end scenario 2
// in spec.md §8 (pushedAt=now, stars=1000, forks=100, lane_hits=3 must
// score > 0.7; pushedAt=now-60d, stars=100, forks=10, lane_hits=1 must
// score < 0.6).
func DefaultWeights() Weights {
	return Weights{Recency: 0.4, Activity: 0.35, Lanes: 0.25}
}

const (
	activityDivisor = 10.0
	laneCap         = 3
)

// Tier1Inputs carries the raw signals behind the Tier-1 score formula.
type Tier1Inputs struct {
	DaysSincePush float64
	WindowDays    float64
	Stars         int
	Forks         int
	LaneHits      int
}

// Tier1 computes the Tier-1 discovery-time score (spec.md §4.4):
//
//	recency_norm = clamp01(1 - days_since_push / window_days)
//	activity_norm = clamp01(log10(stars+forks+1) / activity_divisor)
//	lane_norm = min(lane_hits, lane_cap) / lane_cap
//	tier1 = w_recency*recency_norm + w_activity*activity_norm + w_lanes*lane_norm
func Tier1(in Tier1Inputs, w Weights) float64 {
	window := in.WindowDays
	if window <= 0 {
		window = 1
	}
	recencyNorm := artifact.Clamp01(1 - in.DaysSincePush/window)
	activityNorm := artifact.Clamp01(math.Log10(float64(in.Stars+in.Forks+1)) / activityDivisor)

	laneHits := in.LaneHits
	if laneHits > laneCap {
		laneHits = laneCap
	}
	laneNorm := float64(laneHits) / float64(laneCap)

	raw := w.Recency*recencyNorm + w.Activity*activityNorm + w.Lanes*laneNorm
	return artifact.Round2(artifact.Clamp01(raw))
}

// Tier2Weights are the configurable weights for the Tier-2 combination
// (spec.md §4.8).
type Tier2Weights struct {
	Structural float64
	Modernity  float64
}

// DefaultTier2Weights returns the spec's implied defaults: structural
// and modernity each contribute meaningfully but tier1 dominates.
func DefaultTier2Weights() Tier2Weights {
	return Tier2Weights{Structural: 0.2, Modernity: 0.2}
}

// Tier2Inputs carries the raw signals behind the Tier-2 combination.
type Tier2Inputs struct {
	Tier1Score     float64
	StructuralHits int
	ModernityScore float64
}

// Tier2 computes:
//
//	tier2 = clamp01(tier1 + w_structural*min(match_count,3)/3 + w_modernity*modernity_score)
func Tier2(in Tier2Inputs, w Tier2Weights) float64 {
	hits := in.StructuralHits
	if hits > 3 {
		hits = 3
	}
	structuralNorm := float64(hits) / 3.0
	raw := in.Tier1Score + w.Structural*structuralNorm + w.Modernity*in.ModernityScore
	return artifact.Round2(artifact.Clamp01(raw))
}

// ModernityScore computes passed/total for a set of modernity signals.
// Returns 0 when total is 0 (no checks ran) rather than dividing by
// zero.
func ModernityScore(signals []artifact.ModernitySignal) float64 {
	if len(signals) == 0 {
		return 0
	}
	passed := 0
	for _, s := range signals {
		if s.Passed {
			passed++
		}
	}
	return artifact.Round2(float64(passed) / float64(len(signals)))
}

// SortCandidatesDescending sorts candidates by Tier1Score descending,
// breaking ties on RepoID ascending for a stable, deterministic order
// (spec.md §5: "final candidate order is by Tier-1 score descending
// with repository identifier as stable tie-break").
func SortCandidatesDescending(candidates []artifact.Candidate) {
	sortByScoreThenID(candidates, func(c artifact.Candidate) float64 { return c.Tier1Score }, func(c artifact.Candidate) string { return c.RepoID })
}

func sortByScoreThenID[T any](items []T, score func(T) float64, id func(T) string) {
	// Simple insertion sort is fine: candidate lists are small
	// (bounded by the Tier-1 cap), and this keeps the comparator
	// logic in one obviously-correct place instead of reaching for
	// sort.Slice with a closure at every call site.
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && less(items[j], items[j-1], score, id) {
			items[j], items[j-1] = items[j-1], items[j]
			j--
		}
	}
}

func less[T any](a, b T, score func(T) float64, id func(T) string) bool {
	sa, sb := score(a), score(b)
	if sa != sb {
		return sa > sb
	}
	return id(a) < id(b)
}
