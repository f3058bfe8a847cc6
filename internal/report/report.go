// Package report implements the Report Generator (spec.md §4.10):
// produce a full Markdown report and a compact digest from validation
// and focus artifacts.
package report

import (
	"fmt"
	"strings"

	"scout/internal/artifact"
)

// Full renders the full report: ranked table, per-repo details,
// modernity lines, entrypoints, and scope roots.
func Full(cr artifact.CompareReport, results []artifact.ValidationResult, bundles []artifact.FocusBundle) string {
	byRepo := make(map[string]artifact.ValidationResult, len(results))
	for _, r := range results {
		byRepo[r.RepoID] = r
	}
	bundleByRepo := make(map[string]artifact.FocusBundle, len(bundles))
	for _, b := range bundles {
		bundleByRepo[b.RepoID] = b
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Compare Report %s\n\n", cr.RunID)
	fmt.Fprintf(&sb, "Generated %s\n\n", cr.Timestamp.Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(&sb, "Source: `%s`\n\n", cr.Source.RootPath)

	sb.WriteString("## Ranked Candidates\n\n")
	sb.WriteString("| Rank | Repository | Tier-1 | Tier-2 | Structural | Modernity |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for i, c := range cr.Ranked {
		fmt.Fprintf(&sb, "| %d | %s | %.2f | %.2f | %d | %.2f |\n", i+1, c.RepoID, c.Tier1Score, c.Tier2Score, c.StructuralMatchCount, c.ModernityScore)
	}
	sb.WriteString("\n")

	sb.WriteString("## Per-Repository Detail\n\n")
	for _, c := range cr.Ranked {
		fmt.Fprintf(&sb, "### %s\n\n", c.RepoID)
		if vr, ok := byRepo[c.RepoID]; ok {
			sb.WriteString("Matched kinds:\n\n")
			for _, m := range vr.Matched {
				fmt.Fprintf(&sb, "- **%s**: %s\n", m.Kind, strings.Join(m.Evidence, "; "))
			}
			sb.WriteString("\nModernity checks:\n\n")
			for _, s := range vr.Signals {
				mark := "fail"
				if s.Passed {
					mark = "pass"
				}
				fmt.Fprintf(&sb, "- [%s] %s — %s\n", mark, s.Name, s.Detail)
			}
		}
		if b, ok := bundleByRepo[c.RepoID]; ok {
			sb.WriteString("\nEntrypoints:\n\n")
			for _, e := range b.Entrypoints {
				fmt.Fprintf(&sb, "- `%s` (%s): %s\n", e.Path, e.Kind, e.Reason)
			}
			sb.WriteString("\nScope roots: ")
			sb.WriteString(strings.Join(b.ScopeRoots, ", "))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Pipeline Summary\n\n")
	fmt.Fprintf(&sb, "- Discovered: %d\n", cr.Pipeline.Discovered)
	fmt.Fprintf(&sb, "- Cloned: %d\n", cr.Pipeline.Cloned)
	fmt.Fprintf(&sb, "- Validated: %d\n", cr.Pipeline.Validated)
	if cr.Pipeline.TopRecommendation != nil {
		fmt.Fprintf(&sb, "- Top recommendation: %s (tier2=%.2f)\n", cr.Pipeline.TopRecommendation.RepoID, cr.Pipeline.TopRecommendation.Tier2Score)
	}

	return sb.String()
}

// maxDigestLength is the hard cap spec.md §4.10 requires.
const maxDigestLength = 2000

// Digest renders the compact variant: names the top recommendation
// with score, includes a rank table for alternatives, omits
// methodology prose, and truncates to stay at or below
// maxDigestLength.
func Digest(cr artifact.CompareReport) string {
	var sb strings.Builder
	if cr.Pipeline.TopRecommendation != nil {
		top := cr.Pipeline.TopRecommendation
		fmt.Fprintf(&sb, "# Top recommendation: %s (tier2=%.2f)\n\n", top.RepoID, top.Tier2Score)
	} else {
		sb.WriteString("# No candidates remained after filtering\n\n")
	}

	sb.WriteString("## Alternatives\n\n")
	sb.WriteString("| Repo | Tier-1 | Tier-2 |\n|---|---|---|\n")
	for _, c := range cr.Ranked {
		if cr.Pipeline.TopRecommendation != nil && c.RepoID == cr.Pipeline.TopRecommendation.RepoID {
			continue
		}
		line := fmt.Sprintf("| %s | %.2f | %.2f |\n", c.RepoID, c.Tier1Score, c.Tier2Score)
		if sb.Len()+len(line) > maxDigestLength {
			break
		}
		sb.WriteString(line)
	}

	out := sb.String()
	if len(out) > maxDigestLength {
		out = out[:maxDigestLength]
	}
	return out
}
