package modernity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestRunReturnsSixSignalsInFixedOrder(t *testing.T) {
	root := t.TempDir()
	signals := Run(root, DefaultChecks())
	require.Len(t, signals, 6)
	names := make([]string, len(signals))
	for i, s := range signals {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"esm", "strict-typecheck", "flat-lint-config", "lockfile", "engine-version", "modern-test-runner"}, names)
}

func TestCheckESModulesDetectsPackageJSONType(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"package.json": `{"type":"module"}`})
	sig := checkESModules(root)
	assert.True(t, sig.Passed)
}

func TestCheckESModulesFailsWithoutDeclaration(t *testing.T) {
	root := t.TempDir()
	sig := checkESModules(root)
	assert.False(t, sig.Passed)
}

func TestCheckStrictTypeCheckingDetectsTSConfig(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"tsconfig.json": `{"compilerOptions":{"strict": true}}`})
	sig := checkStrictTypeChecking(root)
	assert.True(t, sig.Passed)
}

func TestCheckStrictTypeCheckingFailsWhenNotStrict(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"tsconfig.json": `{"compilerOptions":{}}`})
	sig := checkStrictTypeChecking(root)
	assert.False(t, sig.Passed)
}

func TestCheckStrictTypeCheckingDetectsMypyInPyproject(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pyproject.toml": "[tool.mypy]\nstrict = true\n"})
	sig := checkStrictTypeChecking(root)
	assert.True(t, sig.Passed)
}

func TestCheckFlatLintConfigPrefersFlatOverLegacy(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"eslint.config.js": "export default []"})
	sig := checkFlatLintConfig(root)
	assert.True(t, sig.Passed)
}

func TestCheckFlatLintConfigFlagsLegacyConfig(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{".eslintrc.json": "{}"})
	sig := checkFlatLintConfig(root)
	assert.False(t, sig.Passed)
	assert.Contains(t, sig.Detail, "legacy")
}

func TestCheckLockfilePresentDetectsGoSum(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"go.sum": "x"})
	sig := checkLockfilePresent(root)
	assert.True(t, sig.Passed)
}

func TestCheckEngineVersionPassesAboveThreshold(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"package.json": `{"engines":{"node":">=20.0.0"}}`})
	sig := checkEngineVersion(root)
	assert.True(t, sig.Passed)
}

func TestCheckEngineVersionFailsBelowThreshold(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"package.json": `{"engines":{"node":"14.0.0"}}`})
	sig := checkEngineVersion(root)
	assert.False(t, sig.Passed)
}

func TestCheckEngineVersionFailsWithoutPackageJSON(t *testing.T) {
	root := t.TempDir()
	sig := checkEngineVersion(root)
	assert.False(t, sig.Passed)
	assert.Contains(t, sig.Detail, "no package.json")
}

func TestNormalizeSemverStripsRangeOperators(t *testing.T) {
	assert.Equal(t, "v18.0.0", normalizeSemver(">=18.0.0"))
	assert.Equal(t, "v18.0.0", normalizeSemver("^18.0.0"))
	assert.Equal(t, "", normalizeSemver("not-a-version"))
}

func TestCheckModernTestRunnerDetectsVitestConfig(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"vitest.config.ts": "export default {}"})
	sig := checkModernTestRunner(root)
	assert.True(t, sig.Passed)
}

func TestCheckModernTestRunnerDetectsPytestIni(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pytest.ini": "[pytest]"})
	sig := checkModernTestRunner(root)
	assert.True(t, sig.Passed)
}
