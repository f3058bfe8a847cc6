package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func emitSession(sessionDir string, req Request, chunks []Chunk, drift bool, driftSummary string) error {
	if err := os.MkdirAll(filepath.Join(sessionDir, "OUTPUT"), 0o755); err != nil {
		return fmt.Errorf("creating OUTPUT/: %w", err)
	}

	if len(chunks) == 1 {
		if err := os.WriteFile(filepath.Join(sessionDir, "diff.patch"), []byte(chunks[0].Text), 0o644); err != nil {
			return fmt.Errorf("writing diff.patch: %w", err)
		}
	} else {
		chunkDir := filepath.Join(sessionDir, "chunks")
		if err := os.MkdirAll(chunkDir, 0o755); err != nil {
			return fmt.Errorf("creating chunks/: %w", err)
		}
		var index strings.Builder
		index.WriteString("# Chunk Index\n\n")
		for _, c := range chunks {
			name := fmt.Sprintf("diff.%03d.patch", c.Index)
			if err := os.WriteFile(filepath.Join(chunkDir, name), []byte(c.Text), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", name, err)
			}
			fmt.Fprintf(&index, "- chunks/%s — ~%d tokens\n", name, estimateTokens(c.Text))
		}
		fmt.Fprintf(&index, "\ntotal=%d\n", len(chunks))
		if err := os.WriteFile(filepath.Join(chunkDir, "CHUNK_INDEX.md"), []byte(index.String()), 0o644); err != nil {
			return fmt.Errorf("writing CHUNK_INDEX.md: %w", err)
		}
	}

	ctx := Context{
		RepoID:          req.RepoID,
		URL:             req.RepoURL,
		FromCommit:      req.From,
		ToCommit:        req.To,
		Kind:            req.Kind,
		TrackedPaths:    req.TrackedPaths,
		Drift:           drift,
		ChunkCount:      len(chunks),
		EstimatedTokens: totalTokens(chunks),
		ReviewerSkill:   req.ReviewerSkill,
		CreatedAt:       time.Now().UTC(),
	}
	ctxData, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling review_context.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(sessionDir, "review_context.json"), ctxData, 0o644); err != nil {
		return fmt.Errorf("writing review_context.json: %w", err)
	}

	instructions := renderInstructions(req, drift, len(chunks))
	if err := os.WriteFile(filepath.Join(sessionDir, "REVIEW_INSTRUCTIONS.md"), []byte(instructions), 0o644); err != nil {
		return fmt.Errorf("writing REVIEW_INSTRUCTIONS.md: %w", err)
	}

	if drift {
		driftMD := fmt.Sprintf("# Drift\n\n%s\n", driftSummary)
		if err := os.WriteFile(filepath.Join(sessionDir, "DRIFT.md"), []byte(driftMD), 0o644); err != nil {
			return fmt.Errorf("writing DRIFT.md: %w", err)
		}
	}
	return nil
}

func renderInstructions(req Request, drift bool, chunkCount int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Review: %s\n\n", req.RepoID)
	fmt.Fprintf(&sb, "Commit range: %s..%s\n", req.From, req.To)
	fmt.Fprintf(&sb, "Target kind: %s\n", req.Kind)
	if len(req.TrackedPaths) > 0 {
		fmt.Fprintf(&sb, "Tracked paths: %s\n", strings.Join(req.TrackedPaths, ", "))
	}
	if drift {
		sb.WriteString("\nThis range touched files outside the tracked scope; see DRIFT.md.\n")
	}
	if chunkCount > 1 {
		fmt.Fprintf(&sb, "\nThe diff is split across %d chunks under chunks/; see CHUNK_INDEX.md.\n", chunkCount)
	} else {
		sb.WriteString("\nThe full diff is at diff.patch.\n")
	}
	sb.WriteString("\nThe working tree for the target commit is checked out at repo/. Write findings to OUTPUT/.\n")
	return sb.String()
}
