package discovery

import (
	"strings"

	"scout/internal/hostclient"
)

// FilterConfig holds the early filters spec.md §4.4 applies before
// scoring: a license allow-list (unknown permitted) and exclusion
// keywords matched against name+description. The older-than-window
// rejection is folded into Tier-1 scoring itself (a very stale repo
// scores near zero rather than being hard-excluded), matching the
// spec's framing of recency as a scored signal, not a binary gate.
type FilterConfig struct {
	AllowedLicenses  []string // empty means allow everything, including unknown
	ExcludedKeywords []string
}

func shouldFilter(item hostclient.RepoItem, cfg FilterConfig) bool {
	if len(cfg.AllowedLicenses) > 0 && item.License != "" {
		allowed := false
		for _, l := range cfg.AllowedLicenses {
			if strings.EqualFold(l, item.License) {
				allowed = true
				break
			}
		}
		if !allowed {
			return true
		}
	}

	haystack := strings.ToLower(item.RepoID + " " + item.Description)
	for _, kw := range cfg.ExcludedKeywords {
		if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
