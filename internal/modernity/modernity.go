// Package modernity implements the Modernity Auditor (spec.md §4.7):
// six mandatory, side-effect-free boolean checks over a cloned repo's
// file tree, combined into a normalized score by internal/score.
package modernity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"scout/internal/artifact"
)

// Check is one named, side-effect-free boolean inspection.
type Check func(repoPath string) artifact.ModernitySignal

// MinEngineVersion is the minimum Node.js-style engine version
// threshold check 5 requires (spec.md §4.7).
const MinEngineVersion = "v18.0.0"

// DefaultChecks returns the six mandatory checks in a fixed order.
func DefaultChecks() []Check {
	return []Check{
		checkESModules,
		checkStrictTypeChecking,
		checkFlatLintConfig,
		checkLockfilePresent,
		checkEngineVersion,
		checkModernTestRunner,
	}
}

// Run executes every check over repoPath and returns the signals in
// check order.
func Run(repoPath string, checks []Check) []artifact.ModernitySignal {
	signals := make([]artifact.ModernitySignal, 0, len(checks))
	for _, c := range checks {
		signals = append(signals, c(repoPath))
	}
	return signals
}

func readFile(repoPath, rel string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(repoPath, rel))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func checkESModules(repoPath string) artifact.ModernitySignal {
	const name = "esm"
	if pkg, ok := readFile(repoPath, "package.json"); ok {
		var doc struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(pkg), &doc); err == nil && doc.Type == "module" {
			return artifact.ModernitySignal{Name: name, Passed: true, Detail: `package.json declares "type": "module"`}
		}
		if strings.Contains(pkg, `"type": "module"`) || strings.Contains(pkg, `"type":"module"`) {
			return artifact.ModernitySignal{Name: name, Passed: true, Detail: "package.json declares ESM type"}
		}
	}
	if _, ok := readFile(repoPath, "tsconfig.json"); ok {
		return artifact.ModernitySignal{Name: name, Passed: true, Detail: "TypeScript project assumed ESM-capable via tsconfig.json"}
	}
	return artifact.ModernitySignal{Name: name, Passed: false, Detail: "no ESM module declaration found"}
}

func checkStrictTypeChecking(repoPath string) artifact.ModernitySignal {
	const name = "strict-typecheck"
	if ts, ok := readFile(repoPath, "tsconfig.json"); ok {
		if strings.Contains(ts, `"strict": true`) || strings.Contains(ts, `"strict":true`) {
			return artifact.ModernitySignal{Name: name, Passed: true, Detail: "tsconfig.json sets strict: true"}
		}
		return artifact.ModernitySignal{Name: name, Passed: false, Detail: "tsconfig.json present but strict mode not enabled"}
	}
	if _, ok := readFile(repoPath, "mypy.ini"); ok {
		return artifact.ModernitySignal{Name: name, Passed: true, Detail: "mypy.ini present"}
	}
	if pyproj, ok := readFile(repoPath, "pyproject.toml"); ok && strings.Contains(pyproj, "[tool.mypy]") {
		return artifact.ModernitySignal{Name: name, Passed: true, Detail: "pyproject.toml configures mypy"}
	}
	return artifact.ModernitySignal{Name: name, Passed: false, Detail: "no strict type-checker configuration found"}
}

func checkFlatLintConfig(repoPath string) artifact.ModernitySignal {
	const name = "flat-lint-config"
	for _, candidate := range []string{"eslint.config.js", "eslint.config.mjs", "eslint.config.ts"} {
		if _, ok := readFile(repoPath, candidate); ok {
			return artifact.ModernitySignal{Name: name, Passed: true, Detail: "found flat config " + candidate}
		}
	}
	if _, ok := readFile(repoPath, "ruff.toml"); ok {
		return artifact.ModernitySignal{Name: name, Passed: true, Detail: "found ruff.toml"}
	}
	if _, ok := readFile(repoPath, ".eslintrc.json"); ok {
		return artifact.ModernitySignal{Name: name, Passed: false, Detail: "legacy .eslintrc config found, not flat config"}
	}
	return artifact.ModernitySignal{Name: name, Passed: false, Detail: "no flat lint configuration found"}
}

func checkLockfilePresent(repoPath string) artifact.ModernitySignal {
	const name = "lockfile"
	for _, lock := range []string{"package-lock.json", "pnpm-lock.yaml", "yarn.lock", "go.sum", "Cargo.lock", "poetry.lock", "Gemfile.lock", "composer.lock"} {
		if _, ok := readFile(repoPath, lock); ok {
			return artifact.ModernitySignal{Name: name, Passed: true, Detail: "found " + lock}
		}
	}
	return artifact.ModernitySignal{Name: name, Passed: false, Detail: "no lock-file found"}
}

func checkEngineVersion(repoPath string) artifact.ModernitySignal {
	const name = "engine-version"
	pkg, ok := readFile(repoPath, "package.json")
	if !ok {
		return artifact.ModernitySignal{Name: name, Passed: false, Detail: "no package.json to read an engines field from"}
	}
	var doc struct {
		Engines struct {
			Node string `json:"node"`
		} `json:"engines"`
	}
	if err := json.Unmarshal([]byte(pkg), &doc); err != nil || doc.Engines.Node == "" {
		return artifact.ModernitySignal{Name: name, Passed: false, Detail: "no engines.node constraint declared"}
	}
	declared := normalizeSemver(doc.Engines.Node)
	if declared == "" {
		return artifact.ModernitySignal{Name: name, Passed: false, Detail: "engines.node constraint not a parseable version: " + doc.Engines.Node}
	}
	if semver.Compare(declared, MinEngineVersion) >= 0 {
		return artifact.ModernitySignal{Name: name, Passed: true, Detail: "engines.node " + doc.Engines.Node + " meets threshold " + MinEngineVersion}
	}
	return artifact.ModernitySignal{Name: name, Passed: false, Detail: "engines.node " + doc.Engines.Node + " below threshold " + MinEngineVersion}
}

// normalizeSemver extracts the first "vX.Y.Z"-shaped token from a
// range expression like ">=18.0.0" so golang.org/x/mod/semver, which
// requires a "v" prefix and an exact version, can compare it.
func normalizeSemver(constraint string) string {
	trimmed := strings.TrimLeft(constraint, ">=^~ ")
	trimmed = strings.SplitN(trimmed, " ", 2)[0]
	if !strings.HasPrefix(trimmed, "v") {
		trimmed = "v" + trimmed
	}
	if !semver.IsValid(trimmed) {
		return ""
	}
	return trimmed
}

func checkModernTestRunner(repoPath string) artifact.ModernitySignal {
	const name = "modern-test-runner"
	for _, candidate := range []string{"vitest.config.ts", "vitest.config.js", "jest.config.js", "jest.config.ts"} {
		if _, ok := readFile(repoPath, candidate); ok {
			return artifact.ModernitySignal{Name: name, Passed: true, Detail: "found " + candidate}
		}
	}
	if pkg, ok := readFile(repoPath, "package.json"); ok && strings.Contains(pkg, `"vitest"`) {
		return artifact.ModernitySignal{Name: name, Passed: true, Detail: "vitest listed as a dependency"}
	}
	if _, ok := readFile(repoPath, "pytest.ini"); ok {
		return artifact.ModernitySignal{Name: name, Passed: true, Detail: "found pytest.ini"}
	}
	if pyproj, ok := readFile(repoPath, "pyproject.toml"); ok && strings.Contains(pyproj, "[tool.pytest") {
		return artifact.ModernitySignal{Name: name, Passed: true, Detail: "pyproject.toml configures pytest"}
	}
	return artifact.ModernitySignal{Name: name, Passed: false, Detail: "no modern test runner configuration found"}
}
