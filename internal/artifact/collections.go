package artifact

import "time"

// TargetsArtifact is the persisted form of targets.json.
type TargetsArtifact struct {
	RootPath  string            `json:"root_path"`
	Timestamp time.Time         `json:"timestamp"`
	Targets   []ComponentTarget `json:"targets"`
}

func (t *TargetsArtifact) Validate() error {
	for i := range t.Targets {
		if err := t.Targets[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CandidatesArtifact is the persisted form of candidates.tier1.json.
type CandidatesArtifact struct {
	RunID      string      `json:"run_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Candidates []Candidate `json:"candidates"`
}

func (c *CandidatesArtifact) Validate() error {
	for i := range c.Candidates {
		if err := c.Candidates[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CloneManifestArtifact is the persisted form of clone-manifest.json.
type CloneManifestArtifact struct {
	RunID     string       `json:"run_id"`
	Timestamp time.Time    `json:"timestamp"`
	Entries   []CloneEntry `json:"entries"`
}

func (m *CloneManifestArtifact) Validate() error {
	for i := range m.Entries {
		if err := m.Entries[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSummaryArtifact is the persisted form of validate-summary.json.
type ValidateSummaryArtifact struct {
	RunID     string             `json:"run_id"`
	Timestamp time.Time          `json:"timestamp"`
	Results   []ValidationResult `json:"results"`
}

func (s *ValidateSummaryArtifact) Validate() error {
	for i := range s.Results {
		if err := s.Results[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FocusIndexArtifact is the persisted form of focus-index.json: one
// entry per repository pointing at its bundle and provenance.
type FocusIndexArtifact struct {
	RunID      string        `json:"run_id"`
	Timestamp  time.Time     `json:"timestamp"`
	Bundles    []FocusBundle `json:"bundles"`
	Provenance []Provenance  `json:"provenance"`
}

func (x *FocusIndexArtifact) Validate() error {
	for i := range x.Bundles {
		if err := x.Bundles[i].Validate(); err != nil {
			return err
		}
	}
	for i := range x.Provenance {
		if err := x.Provenance[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
