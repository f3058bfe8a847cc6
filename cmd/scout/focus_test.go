package main

import (
	"strings"
	"testing"
	"time"

	"scout/internal/artifact"
)

func TestSplitOwnerRepoSplitsOnLastSlash(t *testing.T) {
	owner, name := splitOwnerRepo("owner/name")
	if owner != "owner" || name != "name" {
		t.Errorf("splitOwnerRepo = (%q, %q), want (owner, name)", owner, name)
	}
}

func TestSplitOwnerRepoHandlesMissingOwner(t *testing.T) {
	owner, name := splitOwnerRepo("name-only")
	if owner != "" || name != "name-only" {
		t.Errorf("splitOwnerRepo = (%q, %q), want (\"\", name-only)", owner, name)
	}
}

func TestRenderFocusMDIncludesEntrypointsAndFiles(t *testing.T) {
	bundle := artifact.FocusBundle{
		RepoID:      "owner/repo",
		Entrypoints: []artifact.Entrypoint{{Path: "src/index.ts", Kind: artifact.KindCLI, Reason: "package.json bin"}},
		ScopeRoots:  []string{"src"},
		Files:       []artifact.FocusFile{{Path: "src/index.ts", SizeBytes: 128}},
	}
	out := renderFocusMD(bundle)
	if !strings.Contains(out, "owner/repo") {
		t.Errorf("expected repo id in output, got %q", out)
	}
	if !strings.Contains(out, "src/index.ts") {
		t.Errorf("expected entrypoint path in output, got %q", out)
	}
	if !strings.Contains(out, "Files (1)") {
		t.Errorf("expected file count header in output, got %q", out)
	}
}

func TestRenderRunHintsMDListsEntrypointsWhenPresent(t *testing.T) {
	vr := artifact.ValidationResult{RepoID: "owner/repo", Tier1Score: 0.8, Tier2Score: 0.7}
	bundle := artifact.FocusBundle{Entrypoints: []artifact.Entrypoint{{Path: "main.go"}}}
	out := renderRunHintsMD(vr, bundle)
	if !strings.Contains(out, "main.go") {
		t.Errorf("expected entrypoint listed, got %q", out)
	}
}

func TestRenderRunHintsMDOmitsStartReadingWhenNoEntrypoints(t *testing.T) {
	vr := artifact.ValidationResult{RepoID: "owner/repo"}
	out := renderRunHintsMD(vr, artifact.FocusBundle{})
	if strings.Contains(out, "Start reading at") {
		t.Errorf("expected no \"Start reading at\" section without entrypoints, got %q", out)
	}
}

func TestRenderProvenanceMDIncludesAllFields(t *testing.T) {
	p := artifact.Provenance{
		RepoID: "owner/repo", URL: "https://example.com/owner/repo", CommitID: "abc123",
		License: "MIT", Tier1Score: 0.9, Tier2Score: 0.8, ToolVersion: "scout/0.1.0",
		RunID: "run-1", Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	out := renderProvenanceMD(p)
	for _, want := range []string{"owner/repo", "abc123", "MIT", "scout/0.1.0", "run-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestRenderFocusIndexMDListsEachBundle(t *testing.T) {
	idx := &artifact.FocusIndexArtifact{
		RunID: "run-1",
		Bundles: []artifact.FocusBundle{
			{RepoID: "owner/a", Entrypoints: []artifact.Entrypoint{{Path: "a.go"}}, Files: []artifact.FocusFile{{Path: "a.go"}}},
			{RepoID: "owner/b"},
		},
	}
	out := renderFocusIndexMD(idx)
	if !strings.Contains(out, "owner/a") || !strings.Contains(out, "owner/b") {
		t.Errorf("expected both repos listed, got %q", out)
	}
}
