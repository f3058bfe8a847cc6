package session

import (
	"time"

	"scout/internal/artifact"
)

// Context is the machine-readable review_context.json schema
// (spec.md §4.14 step 8).
type Context struct {
	RepoID          string        `json:"repo_id"`
	URL             string        `json:"url"`
	FromCommit      string        `json:"from_commit"`
	ToCommit        string        `json:"to_commit"`
	Kind            artifact.Kind `json:"kind"`
	TrackedPaths    []string      `json:"tracked_paths"`
	Drift           bool          `json:"drift"`
	ChunkCount      int           `json:"chunk_count"`
	EstimatedTokens int           `json:"estimated_tokens"`
	ReviewerSkill   string        `json:"reviewer_skill,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}
