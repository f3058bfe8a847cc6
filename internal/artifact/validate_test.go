package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintValidate(t *testing.T) {
	assert.NoError(t, (&Fingerprint{RootPath: "/repo"}).Validate())
	assert.ErrorIs(t, (&Fingerprint{}).Validate(), ErrArtifactInvalid)
	assert.ErrorIs(t, (&Fingerprint{RootPath: "/repo", Languages: map[string]int{"go": -1}}).Validate(), ErrArtifactInvalid)
	assert.ErrorIs(t, (&Fingerprint{RootPath: "/repo", Markers: []string{"go.mod", "go.mod"}}).Validate(), ErrArtifactInvalid)
}

func TestComponentTargetValidate(t *testing.T) {
	assert.NoError(t, (&ComponentTarget{Kind: KindCLI, Confidence: 0.42}).Validate())
	assert.ErrorIs(t, (&ComponentTarget{Kind: "bogus", Confidence: 0.5}).Validate(), ErrArtifactInvalid)
	assert.ErrorIs(t, (&ComponentTarget{Kind: KindCLI, Confidence: 1.5}).Validate(), ErrArtifactInvalid)
	assert.ErrorIs(t, (&ComponentTarget{Kind: KindCLI, Confidence: 0.123}).Validate(), ErrArtifactInvalid)
}

func TestCandidateValidate(t *testing.T) {
	assert.NoError(t, (&Candidate{RepoID: "owner/name", Tier1Score: 0.5}).Validate())
	assert.ErrorIs(t, (&Candidate{RepoID: "no-slash", Tier1Score: 0.5}).Validate(), ErrArtifactInvalid)
	assert.ErrorIs(t, (&Candidate{RepoID: "owner/name", Stars: -1}).Validate(), ErrArtifactInvalid)
	assert.ErrorIs(t, (&Candidate{RepoID: "owner/name", Tier1Score: 1.1}).Validate(), ErrArtifactInvalid)
}

func TestCloneEntryValidate(t *testing.T) {
	assert.NoError(t, (&CloneEntry{RepoID: "o/n", LocalPath: "/x", CommitID: "abc"}).Validate())
	assert.ErrorIs(t, (&CloneEntry{RepoID: "o/n"}).Validate(), ErrArtifactInvalid)
}

func TestMatchedTargetValidate(t *testing.T) {
	assert.NoError(t, (&MatchedTarget{Kind: KindLibrary}).Validate())
	assert.ErrorIs(t, (&MatchedTarget{Kind: "bogus"}).Validate(), ErrArtifactInvalid)
}

func TestValidationResultValidate(t *testing.T) {
	ok := &ValidationResult{RepoID: "o/n", LocalPath: "/x", ModernityScore: 0.5, Tier1Score: 0.5, Tier2Score: 0.5}
	assert.NoError(t, ok.Validate())
	assert.ErrorIs(t, (&ValidationResult{LocalPath: "/x"}).Validate(), ErrArtifactInvalid)

	badMatch := &ValidationResult{RepoID: "o/n", LocalPath: "/x", Matched: []MatchedTarget{{Kind: "bogus"}}}
	assert.ErrorIs(t, badMatch.Validate(), ErrArtifactInvalid)

	outOfRange := &ValidationResult{RepoID: "o/n", LocalPath: "/x", ModernityScore: 1.5}
	assert.ErrorIs(t, outOfRange.Validate(), ErrArtifactInvalid)

	badTierScore := &ValidationResult{RepoID: "o/n", LocalPath: "/x", Tier2Score: -0.1}
	assert.ErrorIs(t, badTierScore.Validate(), ErrArtifactInvalid)
}

func TestFocusBundleValidate(t *testing.T) {
	assert.NoError(t, (&FocusBundle{RepoID: "o/n"}).Validate())
	assert.ErrorIs(t, (&FocusBundle{}).Validate(), ErrArtifactInvalid)
	assert.ErrorIs(t, (&FocusBundle{RepoID: "o/n", Files: []FocusFile{{Path: "x", SizeBytes: -1}}}).Validate(), ErrArtifactInvalid)
}

func TestProvenanceValidate(t *testing.T) {
	ok := &Provenance{RepoID: "o/n", URL: "https://x", CommitID: "abc", RunID: "run1"}
	assert.NoError(t, ok.Validate())
	assert.ErrorIs(t, (&Provenance{RepoID: "o/n"}).Validate(), ErrArtifactInvalid)
}

func TestCompareReportValidate(t *testing.T) {
	assert.NoError(t, (&CompareReport{RunID: "run1"}).Validate())
	assert.ErrorIs(t, (&CompareReport{}).Validate(), ErrArtifactInvalid)
	assert.ErrorIs(t, (&CompareReport{RunID: "run1", Pipeline: PipelineSummary{Discovered: -1}}).Validate(), ErrArtifactInvalid)
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.6, Round2(0.4+0.2))
	assert.Equal(t, 0.43, Round2(0.425))
	assert.Equal(t, 0.0, Round2(0))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-1))
	assert.Equal(t, 1.0, Clamp01(2))
	assert.Equal(t, 0.5, Clamp01(0.5))
}

func TestKindIsValid(t *testing.T) {
	for _, k := range AllKinds {
		assert.True(t, k.IsValid())
	}
	assert.False(t, Kind("bogus").IsValid())
}

func TestSessionStatusCanTransitionTo(t *testing.T) {
	assert.True(t, SessionPending.CanTransitionTo(SessionRunning))
	assert.True(t, SessionPending.CanTransitionTo(SessionSkipped))
	assert.True(t, SessionRunning.CanTransitionTo(SessionSuccess))
	assert.True(t, SessionRunning.CanTransitionTo(SessionFailure))
	assert.False(t, SessionPending.CanTransitionTo(SessionPending))
	assert.False(t, SessionRunning.CanTransitionTo(SessionPending))
	assert.False(t, SessionSuccess.CanTransitionTo(SessionRunning))
	assert.False(t, SessionFailure.CanTransitionTo(SessionSuccess))
}
