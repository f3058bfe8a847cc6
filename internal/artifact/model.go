package artifact

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Fingerprint is an immutable snapshot of a source tree (spec.md §3).
// Created once per scan invocation; callers must never mutate it after
// construction.
type Fingerprint struct {
	RootPath    string         `json:"root_path"`
	CommitID    string         `json:"commit_id,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Languages   map[string]int `json:"languages"`
	Markers     []string       `json:"markers"`
}

// Validate checks structural invariants; it deliberately does not check
// Timestamp since spec.md §4.1 excludes it from the determinism
// guarantee.
func (f *Fingerprint) Validate() error {
	if f.RootPath == "" {
		return fmt.Errorf("%w: fingerprint root_path is required", ErrArtifactInvalid)
	}
	for lang, count := range f.Languages {
		if lang == "" {
			return fmt.Errorf("%w: fingerprint has empty language key", ErrArtifactInvalid)
		}
		if count < 0 {
			return fmt.Errorf("%w: fingerprint language %q has negative count", ErrArtifactInvalid, lang)
		}
	}
	seen := make(map[string]bool, len(f.Markers))
	for _, m := range f.Markers {
		if seen[m] {
			return fmt.Errorf("%w: fingerprint marker %q recorded more than once", ErrArtifactInvalid, m)
		}
		seen[m] = true
	}
	return nil
}

// SearchHints carries the keyword/topic/language bias a Component
// Target contributes to the Search-Lane Builder.
type SearchHints struct {
	Keywords     []string `json:"keywords"`
	Topics       []string `json:"topics"`
	LanguageBias string   `json:"language_bias,omitempty"`
}

// ComponentTarget is a ranked, evidenced guess at what kind of
// component the scanned tree resembles (spec.md §3).
type ComponentTarget struct {
	Kind       Kind        `json:"kind"`
	Confidence float64     `json:"confidence"`
	Evidence   []string    `json:"evidence"`
	Hints      SearchHints `json:"search_hints"`
}

func (t *ComponentTarget) Validate() error {
	if !t.Kind.IsValid() {
		return fmt.Errorf("%w: component target has invalid kind %q", ErrArtifactInvalid, t.Kind)
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return fmt.Errorf("%w: component target confidence %v out of [0,1]", ErrArtifactInvalid, t.Confidence)
	}
	if round2(t.Confidence) != t.Confidence {
		return fmt.Errorf("%w: component target confidence %v not rounded to 2 decimals", ErrArtifactInvalid, t.Confidence)
	}
	return nil
}

// Candidate is a Tier-1 scored repository discovered by the Discovery
// Engine. Uniqueness key: RepoID ("owner/name"). Never mutated after
// scoring (spec.md §3).
type Candidate struct {
	RepoID      string    `json:"repo_id"`
	URL         string    `json:"url"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	LastPush    time.Time `json:"last_push"`
	License     string    `json:"license,omitempty"`
	Description string    `json:"description,omitempty"`
	Topics      []string  `json:"topics"`
	Lanes       []string  `json:"lanes"`
	Tier1Score  float64   `json:"tier1_score"`
}

func (c *Candidate) Validate() error {
	if !strings.Contains(c.RepoID, "/") {
		return fmt.Errorf("%w: candidate repo_id %q must be owner/name", ErrArtifactInvalid, c.RepoID)
	}
	if c.Stars < 0 || c.Forks < 0 {
		return fmt.Errorf("%w: candidate %s has negative stars/forks", ErrArtifactInvalid, c.RepoID)
	}
	if c.Tier1Score < 0 || c.Tier1Score > 1 {
		return fmt.Errorf("%w: candidate %s tier1_score %v out of [0,1]", ErrArtifactInvalid, c.RepoID, c.Tier1Score)
	}
	return nil
}

// CloneEntry records where a Candidate landed in the content-addressed
// cache after a shallow fetch (spec.md §3). One-to-one with RepoID.
type CloneEntry struct {
	RepoID     string  `json:"repo_id"`
	URL        string  `json:"url"`
	LocalPath  string  `json:"local_path"`
	CommitID   string  `json:"commit_id"`
	Tier1Score float64 `json:"tier1_score"`
}

func (c *CloneEntry) Validate() error {
	if c.RepoID == "" || c.LocalPath == "" || c.CommitID == "" {
		return fmt.Errorf("%w: clone entry missing required field", ErrArtifactInvalid)
	}
	return nil
}

// MatchedTarget is a Structural Validator finding: a component kind
// with supporting evidence and the focus roots it contributes.
type MatchedTarget struct {
	Kind       Kind     `json:"kind"`
	Evidence   []string `json:"evidence"`
	FocusRoots []string `json:"focus_roots"`
}

func (m *MatchedTarget) Validate() error {
	if !m.Kind.IsValid() {
		return fmt.Errorf("%w: matched target has invalid kind %q", ErrArtifactInvalid, m.Kind)
	}
	return nil
}

// ModernitySignal is one named boolean check result from the Modernity
// Auditor.
type ModernitySignal struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// KindPaths pairs a matched kind with the candidate entrypoint paths
// Focus will choose from.
type KindPaths struct {
	Kind  Kind     `json:"kind"`
	Paths []string `json:"paths"`
}

// ValidationResult is the per-repository output of the Structural
// Validator, Modernity Auditor, and Tier-2 Scorer combined (spec.md §3).
type ValidationResult struct {
	RepoID               string            `json:"repo_id"`
	LocalPath            string            `json:"local_path"`
	Matched              []MatchedTarget   `json:"matched"`
	Signals              []ModernitySignal `json:"signals"`
	StructuralMatchCount int               `json:"structural_match_count"`
	ModernityScore       float64           `json:"modernity_score"`
	Tier1Score           float64           `json:"tier1_score"`
	Tier2Score           float64           `json:"tier2_score"`
	FocusCandidates      []KindPaths       `json:"focus_candidates"`
}

func (v *ValidationResult) Validate() error {
	if v.RepoID == "" || v.LocalPath == "" {
		return fmt.Errorf("%w: validation result missing repo_id/local_path", ErrArtifactInvalid)
	}
	for i := range v.Matched {
		if err := v.Matched[i].Validate(); err != nil {
			return err
		}
	}
	if v.ModernityScore < 0 || v.ModernityScore > 1 {
		return fmt.Errorf("%w: validation result %s modernity_score %v out of [0,1]", ErrArtifactInvalid, v.RepoID, v.ModernityScore)
	}
	if v.Tier1Score < 0 || v.Tier1Score > 1 || v.Tier2Score < 0 || v.Tier2Score > 1 {
		return fmt.Errorf("%w: validation result %s score out of [0,1]", ErrArtifactInvalid, v.RepoID)
	}
	return nil
}

// Entrypoint is one resolved entrypoint in a Focus Bundle.
type Entrypoint struct {
	Kind   Kind   `json:"kind"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// FocusFile is one file selected by the depth-budgeted scope walk.
type FocusFile struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// FocusBundle is the depth-budgeted, entrypoint-oriented file selection
// produced per repository by the Focus Bundler (spec.md §3).
type FocusBundle struct {
	RepoID      string       `json:"repo_id"`
	Entrypoints []Entrypoint `json:"entrypoints"`
	ScopeRoots  []string     `json:"scope_roots"`
	Files       []FocusFile  `json:"files"`
}

func (b *FocusBundle) Validate() error {
	if b.RepoID == "" {
		return fmt.Errorf("%w: focus bundle missing repo_id", ErrArtifactInvalid)
	}
	for _, f := range b.Files {
		if f.SizeBytes < 0 {
			return fmt.Errorf("%w: focus bundle %s has negative file size for %s", ErrArtifactInvalid, b.RepoID, f.Path)
		}
	}
	return nil
}

// Provenance is the immutable record of where a Focus Bundle's content
// came from (spec.md §3). One per bundle.
type Provenance struct {
	RepoID      string    `json:"repo_id"`
	URL         string    `json:"url"`
	CommitID    string    `json:"commit_id"`
	License     string    `json:"license,omitempty"`
	Tier1Score  float64   `json:"tier1_score"`
	Tier2Score  float64   `json:"tier2_score"`
	ToolVersion string    `json:"tool_version"`
	RunID       string    `json:"run_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func (p *Provenance) Validate() error {
	if p.RepoID == "" || p.URL == "" || p.CommitID == "" || p.RunID == "" {
		return fmt.Errorf("%w: provenance missing required field", ErrArtifactInvalid)
	}
	return nil
}

// CandidateSummary is one row of a Compare Report's ranked table.
type CandidateSummary struct {
	RepoID               string  `json:"repo_id"`
	URL                  string  `json:"url"`
	Tier1Score           float64 `json:"tier1_score"`
	Tier2Score           float64 `json:"tier2_score"`
	StructuralMatchCount int     `json:"structural_match_count"`
	ModernityScore       float64 `json:"modernity_score"`
	MatchedKinds         []Kind  `json:"matched_kinds"`
}

// PipelineSummary is the aggregate run summary attached to a Compare Report.
type PipelineSummary struct {
	Discovered        int               `json:"discovered"`
	Cloned            int               `json:"cloned"`
	Validated         int               `json:"validated"`
	TopRecommendation *CandidateSummary `json:"top_recommendation,omitempty"`
}

// SourceSummary describes the scanned source tree in a Compare Report.
type SourceSummary struct {
	RootPath  string         `json:"root_path"`
	Languages map[string]int `json:"languages"`
	Targets   []Kind         `json:"targets"`
}

// CompareReport is the full-pipeline output artifact (spec.md §3). Its
// Digest variant is produced by internal/report, not stored as a
// separate struct here — it is the same content rendered compactly.
type CompareReport struct {
	RunID     string            `json:"run_id"`
	Timestamp time.Time         `json:"timestamp"`
	Source    SourceSummary     `json:"source"`
	Ranked    []CandidateSummary `json:"ranked"`
	Pipeline  PipelineSummary   `json:"pipeline"`
}

func (r *CompareReport) Validate() error {
	if r.RunID == "" {
		return fmt.Errorf("%w: compare report missing run_id", ErrArtifactInvalid)
	}
	if r.Pipeline.Discovered < 0 || r.Pipeline.Cloned < 0 || r.Pipeline.Validated < 0 {
		return fmt.Errorf("%w: compare report has negative pipeline counts", ErrArtifactInvalid)
	}
	return nil
}

// round2 rounds to two decimal places using the same half-away-from-zero
// convention everywhere a score or confidence is emitted, so that
// "0.4 + 0.2" always lands on exactly 0.6 (spec.md §8).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round2 exposes round2 for use by other packages (internal/score,
// internal/targets) so every rounding call in the module shares one
// implementation.
func Round2(v float64) float64 { return round2(v) }

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
