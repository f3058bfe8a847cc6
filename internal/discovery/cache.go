package discovery

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"scout/internal/cachepath"
	"scout/internal/hostclient"
)

// FileCache is the production Cache: one JSON file per cache key under
// a cachepath.Resolver's "api" category, SHA-256-keyed and
// TTL-expiring, exactly as spec.md §4.4 and the cache-path consistency
// property (§8 scenario 3) require.
type FileCache struct {
	Resolver cachepath.Resolver
}

type cacheEnvelope struct {
	ExpiresAt time.Time             `json:"expires_at"`
	Items     []hostclient.RepoItem `json:"items"`
}

func (c FileCache) Get(key string) ([]hostclient.RepoItem, bool) {
	path := c.Resolver.APIResponsePath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var env cacheEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false
	}
	if time.Now().UTC().After(env.ExpiresAt) {
		return nil, false
	}
	return env.Items, true
}

func (c FileCache) Put(key string, items []hostclient.RepoItem, ttl time.Duration) {
	path := c.Resolver.APIResponsePath(key)
	env := cacheEnvelope{ExpiresAt: time.Now().UTC().Add(ttl), Items: items}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, data, 0o644)
}
