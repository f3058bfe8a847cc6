package validate

import (
	"os"
	"path/filepath"

	"scout/internal/artifact"
)

type mcpServerDetector struct{}

func (mcpServerDetector) Kind() artifact.Kind { return artifact.KindMCPServer }

func (mcpServerDetector) Detect(repoPath string) ([]string, []string) {
	var evidence, roots []string
	if exists(repoPath, ".mcp.json") {
		evidence = append(evidence, "found .mcp.json")
	}
	if exists(repoPath, "mcp.json") {
		evidence = append(evidence, "found mcp.json")
	}
	if d := firstExistingDir(repoPath, "src/server", "server"); d != "" {
		evidence = append(evidence, "found server implementation directory "+d)
		roots = append(roots, d)
	}
	return evidence, roots
}

type cliDetector struct{}

func (cliDetector) Kind() artifact.Kind { return artifact.KindCLI }

func (cliDetector) Detect(repoPath string) ([]string, []string) {
	var evidence, roots []string
	if exists(repoPath, "cmd") {
		evidence = append(evidence, "found cmd/ directory")
		roots = append(roots, "cmd")
	}
	if exists(repoPath, "bin") {
		evidence = append(evidence, "found bin/ directory")
		roots = append(roots, "bin")
	}
	if hasPackageJSONBin(repoPath) {
		evidence = append(evidence, "package.json declares a bin entry")
	}
	return evidence, roots
}

type skillDetector struct{}

func (skillDetector) Kind() artifact.Kind { return artifact.KindSkill }

func (skillDetector) Detect(repoPath string) ([]string, []string) {
	var evidence []string
	if exists(repoPath, "SKILL.md") {
		evidence = append(evidence, "found SKILL.md")
	}
	return evidence, nil
}

type hookDetector struct{}

func (hookDetector) Kind() artifact.Kind { return artifact.KindHook }

func (hookDetector) Detect(repoPath string) ([]string, []string) {
	var evidence, roots []string
	if exists(repoPath, ".claude/hooks") {
		evidence = append(evidence, "found .claude/hooks directory")
		roots = append(roots, ".claude/hooks")
	}
	if exists(repoPath, "hooks") {
		evidence = append(evidence, "found hooks/ directory")
		roots = append(roots, "hooks")
	}
	return evidence, roots
}

type pluginDetector struct{}

func (pluginDetector) Kind() artifact.Kind { return artifact.KindPlugin }

func (pluginDetector) Detect(repoPath string) ([]string, []string) {
	var evidence, roots []string
	if exists(repoPath, "plugin.json") {
		evidence = append(evidence, "found plugin.json")
	}
	if exists(repoPath, "manifest.json") {
		evidence = append(evidence, "found manifest.json")
	}
	if exists(repoPath, "plugins") {
		evidence = append(evidence, "found plugins/ directory")
		roots = append(roots, "plugins")
	}
	return evidence, roots
}

// libraryDetector is the fallback: every repo with a recognizable
// package manifest counts as a library match so that at least one
// kind is always matched when a manifest is present (spec.md §4.6).
type libraryDetector struct{}

func (libraryDetector) Kind() artifact.Kind { return artifact.KindLibrary }

func (libraryDetector) Detect(repoPath string) ([]string, []string) {
	var evidence []string
	for _, m := range []string{"package.json", "go.mod", "pyproject.toml", "Cargo.toml", "Gemfile", "composer.json"} {
		if exists(repoPath, m) {
			evidence = append(evidence, "found "+m)
		}
	}
	return evidence, nil
}

func firstExistingDir(repoPath string, candidates ...string) string {
	for _, c := range candidates {
		info, err := os.Stat(filepath.Join(repoPath, c))
		if err == nil && info.IsDir() {
			return c
		}
	}
	return ""
}

func hasPackageJSONBin(repoPath string) bool {
	data, err := os.ReadFile(filepath.Join(repoPath, "package.json"))
	if err != nil {
		return false
	}
	// A narrow textual check avoids pulling in a JSON-schema-aware
	// manifest parser for one boolean signal; full manifest parsing
	// belongs to the Modernity Auditor's package-manager check.
	return containsKey(string(data), `"bin"`)
}

func containsKey(doc, key string) bool {
	for i := 0; i+len(key) <= len(doc); i++ {
		if doc[i:i+len(key)] == key {
			return true
		}
	}
	return false
}
