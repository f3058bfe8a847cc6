// Package cachepath resolves the on-disk layout of the content-addressed
// cache spec.md §4.17 describes: `<base>/repos/<owner>/<name>` for
// cloned repositories and `<base>/api/<key>.json` for cached search
// responses. It is the module's seam for the "cache-directory resolver"
// external collaborator — a thin interface with one stdlib-based default
// implementation, so tests can substitute a temp-dir resolver without
// the rest of the pipeline knowing the difference.
package cachepath

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// Resolver maps logical cache categories to on-disk paths, all rooted
// under one base directory.
type Resolver interface {
	Base() string
	Category(name string) string
	RepoPath(owner, name string) string
	APIResponsePath(key string) string
}

// Default is a Resolver rooted at an explicit base directory. cmd/scout
// roots it at the "scout" subdirectory of os.UserCacheDir, or at
// SCOUT_CACHE_DIR when that is set; the resolver itself has no opinion
// about the base.
type Default struct {
	BaseDir string
}

func (d Default) Base() string { return d.BaseDir }

func (d Default) Category(name string) string {
	return filepath.Join(d.BaseDir, name)
}

// RepoPath returns the content-addressed clone destination for a
// repository, keyed by owner and name so two different owners' repos
// of the same name never collide.
func (d Default) RepoPath(owner, name string) string {
	return filepath.Join(d.Category("repos"), owner, name)
}

// APIResponsePath returns the cache path for a search response keyed
// by an opaque content key (the caller hashes query+page first).
func (d Default) APIResponsePath(key string) string {
	return filepath.Join(d.Category("api"), key+".json")
}

// HashKey derives a deterministic cache key from arbitrary request
// components (query string, page number, lane name, ...) so identical
// requests always hit the same cache entry.
func HashKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
