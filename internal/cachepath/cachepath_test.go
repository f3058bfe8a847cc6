package cachepath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCachePathConsistencyScenario3 is spec.md §8 end-to-end scenario
// 3: getApiCachePath(h) is a descendant of getCachePath("api") with a
// .json suffix; getRepoCachePath(o,r) is a descendant of
// getCachePath("repos") and contains o and r literally.
func TestCachePathConsistencyScenario3(t *testing.T) {
	r := Default{BaseDir: "/cache"}

	apiPath := r.APIResponsePath("deadbeef")
	assert.True(t, strings.HasPrefix(apiPath, r.Category("api")))
	assert.True(t, strings.HasSuffix(apiPath, ".json"))

	repoPath := r.RepoPath("owner", "name")
	assert.True(t, strings.HasPrefix(repoPath, r.Category("repos")))
	assert.Contains(t, repoPath, "owner")
	assert.Contains(t, repoPath, "name")
}

func TestRepoPathKeyedByOwnerAndName(t *testing.T) {
	r := Default{BaseDir: "/cache"}
	a := r.RepoPath("alice", "tool")
	b := r.RepoPath("bob", "tool")
	assert.NotEqual(t, a, b)
}

func TestHashKeyDeterministic(t *testing.T) {
	a := HashKey("lane", "query", "1")
	b := HashKey("lane", "query", "1")
	c := HashKey("lane", "query", "2")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestBaseAndCategory(t *testing.T) {
	r := Default{BaseDir: "/cache"}
	assert.Equal(t, "/cache", r.Base())
	assert.Equal(t, "/cache/runs/watch", r.Category("runs/watch"))
}
