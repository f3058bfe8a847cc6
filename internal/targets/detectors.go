package targets

import (
	"os"
	"path/filepath"

	"scout/internal/artifact"
)

func hasMarker(fp *artifact.Fingerprint, name string) bool {
	for _, m := range fp.Markers {
		if m == name {
			return true
		}
	}
	return false
}

func pathExists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, rel))
	return err == nil
}

type mcpServerDetector struct{}

func (mcpServerDetector) Kind() artifact.Kind { return artifact.KindMCPServer }

func (mcpServerDetector) Detect(root string, fp *artifact.Fingerprint) []Signal {
	var signals []Signal
	if hasMarker(fp, ".mcp.json") {
		signals = append(signals, Signal{Weight: 0.6, Evidence: "found .mcp.json manifest"})
	}
	if pathExists(root, "mcp.json") {
		signals = append(signals, Signal{Weight: 0.3, Evidence: "found mcp.json"})
	}
	if fp.Languages["typescript"] > 0 || fp.Languages["javascript"] > 0 || fp.Languages["python"] > 0 || fp.Languages["go"] > 0 {
		if pathExists(root, "src/server.ts") || pathExists(root, "src/server.js") || pathExists(root, "server.py") {
			signals = append(signals, Signal{Weight: 0.2, Evidence: "found a server entrypoint file"})
		}
	}
	return signals
}

type cliDetector struct{}

func (cliDetector) Kind() artifact.Kind { return artifact.KindCLI }

func (cliDetector) Detect(root string, fp *artifact.Fingerprint) []Signal {
	var signals []Signal
	if hasMarker(fp, "package.json") && pathExists(root, "bin") {
		signals = append(signals, Signal{Weight: 0.5, Evidence: "package.json with bin/ directory"})
	}
	if hasMarker(fp, "go.mod") && pathExists(root, "cmd") {
		signals = append(signals, Signal{Weight: 0.5, Evidence: "go.mod with cmd/ directory"})
	}
	if pathExists(root, "cli.go") || pathExists(root, "cli.py") || pathExists(root, "cli.ts") {
		signals = append(signals, Signal{Weight: 0.3, Evidence: "found a cli entrypoint file"})
	}
	return signals
}

type skillDetector struct{}

func (skillDetector) Kind() artifact.Kind { return artifact.KindSkill }

func (skillDetector) Detect(root string, fp *artifact.Fingerprint) []Signal {
	var signals []Signal
	if hasMarker(fp, "SKILL.md") {
		signals = append(signals, Signal{Weight: 0.8, Evidence: "found SKILL.md"})
	}
	return signals
}

type hookDetector struct{}

func (hookDetector) Kind() artifact.Kind { return artifact.KindHook }

func (hookDetector) Detect(root string, fp *artifact.Fingerprint) []Signal {
	var signals []Signal
	if hasMarker(fp, ".claude") && pathExists(root, ".claude/hooks") {
		signals = append(signals, Signal{Weight: 0.7, Evidence: "found .claude/hooks directory"})
	}
	if pathExists(root, "hooks") {
		signals = append(signals, Signal{Weight: 0.2, Evidence: "found hooks/ directory"})
	}
	return signals
}

type pluginDetector struct{}

func (pluginDetector) Kind() artifact.Kind { return artifact.KindPlugin }

func (pluginDetector) Detect(root string, fp *artifact.Fingerprint) []Signal {
	var signals []Signal
	if hasMarker(fp, "manifest.json") {
		signals = append(signals, Signal{Weight: 0.4, Evidence: "found manifest.json"})
	}
	if pathExists(root, "plugin.json") {
		signals = append(signals, Signal{Weight: 0.5, Evidence: "found plugin.json"})
	}
	if pathExists(root, "plugins") {
		signals = append(signals, Signal{Weight: 0.2, Evidence: "found plugins/ directory"})
	}
	return signals
}

// libraryDetector is the fallback: every repo with a manifest file has
// at least weak library evidence, per spec.md §4.6's fallback-detector
// note (stated there for the Structural Validator; applied here too so
// a manifest-only repo still yields one ranked target).
type libraryDetector struct{}

func (libraryDetector) Kind() artifact.Kind { return artifact.KindLibrary }

func (libraryDetector) Detect(root string, fp *artifact.Fingerprint) []Signal {
	var signals []Signal
	for _, m := range []string{"package.json", "go.mod", "pyproject.toml", "Cargo.toml", "Gemfile", "composer.json"} {
		if hasMarker(fp, m) {
			signals = append(signals, Signal{Weight: 0.3, Evidence: "found " + m})
		}
	}
	if len(fp.Languages) > 0 {
		signals = append(signals, Signal{Weight: 0.1, Evidence: "source files present"})
	}
	return signals
}
