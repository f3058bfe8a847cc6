package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"scout/internal/cachepath"
	"scout/internal/config"
	"scout/internal/git"
	"scout/internal/hostclient"
	"scout/internal/procexec"
	"scout/internal/vcs"
)

var (
	stepColor = color.New(color.FgCyan)
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
)

// toolVersion stamps every Provenance record (spec.md §3).
const toolVersion = "scout/0.1.0"

func step(format string, args ...interface{}) {
	fmt.Println(stepColor.Sprintf("-> "+format, args...))
}

func ok(format string, args ...interface{}) {
	fmt.Println(okColor.Sprintf("ok "+format, args...))
}

func fail(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, errColor.Sprintf("error: "+format, args...))
}

// loadConfig resolves the four-layer config (spec.md §4.16): a global
// file under the user config directory, ".scoutrc.json" in the
// current directory, then environment variables.
func loadConfig() (*config.Config, error) {
	globalPath := ""
	if dir, err := os.UserConfigDir(); err == nil {
		globalPath = filepath.Join(dir, "scout", "config.json")
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return config.Load(globalPath, filepath.Join(cwd, ".scoutrc.json"))
}

// cacheRoot resolves the platform-native cache root (spec.md §6): the
// user cache directory's "scout" subdirectory, unless SCOUT_CACHE_DIR
// overrides it for tests and CI.
func cacheRoot() (string, error) {
	if dir := os.Getenv("SCOUT_CACHE_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving user cache directory: %w", err)
	}
	return filepath.Join(base, "scout"), nil
}

func newResolver() (cachepath.Resolver, error) {
	root, err := cacheRoot()
	if err != nil {
		return nil, err
	}
	return cachepath.Default{BaseDir: root}, nil
}

func newGit() *git.Git {
	return git.New(procexec.DefaultRunner{})
}

func newVCS() vcs.VCS {
	return vcs.NewGitVCS(procexec.DefaultRunner{})
}

// watchDir is the durable store's directory, spec.md §6:
// "runs/watch/", which also houses the advisory lock file.
func watchDir(resolver cachepath.Resolver) string {
	return resolver.Category("runs/watch")
}

// experimentalWarned is the one-time "experimental warning" global
// state spec.md §9 names explicitly; every experimental command calls
// warnExperimental exactly once per process.
var (
	experimentalWarned sync.Map
)

func warnExperimental(command string) {
	if _, already := experimentalWarned.LoadOrStore(command, true); already {
		return
	}
	fmt.Fprintln(os.Stderr, color.New(color.FgYellow).Sprintf("warning: %q is experimental and may change without notice", command))
}

func newRunID() string {
	return uuid.New().String()
}

// hostClientFromConfig builds the Discovery Engine's SearchClient from
// the resolved config's base URL and token (spec.md §4.16).
func hostClientFromConfig(cfg *config.Config) *hostclient.Default {
	return hostclient.NewDefault(cfg.RemoteAPIBaseURL).WithToken(cfg.RemoteAPIToken)
}
