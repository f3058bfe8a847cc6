// Package discovery implements the Discovery Engine (spec.md §4.4):
// execute search lanes against the remote hosting API with response
// caching and backoff, deduplicate by repository identifier, apply
// early filters, score Tier-1, and truncate to a configured cap.
//
// Grounded on the teacher's WorkerRegistry/DiscoveryWorker shape for
// "run a fixed set of units, collect results, never let one unit's
// failure abort the batch" — but the units here are search lanes
// against a SearchClient rather than AI-prompted analysis workers, so
// the registry machinery itself was dropped (see DESIGN.md) in favor
// of a straight sequential loop matching spec.md §5's sequential-lane
// mandate.
package discovery

import (
	"context"
	"fmt"
	"time"

	"scout/internal/artifact"
	"scout/internal/hostclient"
	"scout/internal/lanes"
	"scout/internal/score"
)

// Config bundles the Discovery Engine's tunables, all sourced from
// internal/config in production.
type Config struct {
	WindowDays float64
	Tier1Cap   int
	Weights    score.Weights
	Filters    FilterConfig
	CacheTTL   time.Duration
	MaxPages   int
	MaxBackoff time.Duration

	// SteadyStateThreshold is the successful-call count after which a
	// steady-state rate is enforced between calls: a fixed spacing of
	// SteadyStateInterval, which does not grow with further calls.
	// Zero disables steady-state limiting.
	SteadyStateThreshold int
	SteadyStateInterval  time.Duration
}

// LaneResult captures the outcome of running a single lane, so a
// failing lane never aborts the run (spec.md §4.4: "other errors abort
// that lane, not the run").
type LaneResult struct {
	Lane  lanes.Lane
	Items int
	Err   error
}

// Cache is the response cache contract: SHA-256-keyed, TTL-expiring.
// internal/discovery/cache.go's FileCache is the production
// implementation, rooted at a cachepath.Resolver's "api" category.
type Cache interface {
	Get(key string) ([]hostclient.RepoItem, bool)
	Put(key string, items []hostclient.RepoItem, ttl time.Duration)
}

// Run executes every lane sequentially against client, merges results
// into deduplicated Tier-1-scored Candidates, and returns both the
// final candidate list (sorted, truncated to Config.Tier1Cap) and the
// per-lane outcomes for telemetry.
func Run(ctx context.Context, client hostclient.SearchClient, cache Cache, laneSet []lanes.Lane, cfg Config) ([]artifact.Candidate, []LaneResult) {
	merged := make(map[string]*mergedItem)
	results := make([]LaneResult, 0, len(laneSet))
	backoff := newBackoff(cfg.MaxBackoff)
	steady := newSteadyStateLimiter(cfg.SteadyStateThreshold, cfg.SteadyStateInterval)

	for _, lane := range laneSet {
		count, err := runLane(ctx, client, cache, lane, cfg, backoff, steady, merged)
		results = append(results, LaneResult{Lane: lane, Items: count, Err: err})
	}

	candidates := buildCandidates(merged, cfg)
	score.SortCandidatesDescending(candidates)
	if cfg.Tier1Cap > 0 && len(candidates) > cfg.Tier1Cap {
		candidates = candidates[:cfg.Tier1Cap]
	}
	return candidates, results
}

type mergedItem struct {
	item  hostclient.RepoItem
	lanes map[string]bool
}

func runLane(ctx context.Context, client hostclient.SearchClient, cache Cache, lane lanes.Lane, cfg Config, b *backoff, steady *steadyStateLimiter, merged map[string]*mergedItem) (int, error) {
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	total := 0
	for page := 1; page <= maxPages; page++ {
		items, err := fetchPage(ctx, client, cache, lane, page, cfg.CacheTTL, b, steady)
		if err != nil {
			return total, fmt.Errorf("lane %s: %w", lane.Name, err)
		}
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			if shouldFilter(item, cfg.Filters) {
				continue
			}
			entry, ok := merged[item.RepoID]
			if !ok {
				entry = &mergedItem{item: item, lanes: make(map[string]bool)}
				merged[item.RepoID] = entry
			}
			entry.lanes[lane.Name] = true
		}
		total += len(items)
	}
	return total, nil
}

func fetchPage(ctx context.Context, client hostclient.SearchClient, cache Cache, lane lanes.Lane, page int, ttl time.Duration, b *backoff, steady *steadyStateLimiter) ([]hostclient.RepoItem, error) {
	key := cacheKey(lane.Query, page)
	if cache != nil {
		if cached, ok := cache.Get(key); ok {
			return cached, nil
		}
	}

	for {
		if err := steady.wait(ctx); err != nil {
			return nil, err
		}
		items, err := client.Search(ctx, lane.Query, page)
		if err == nil {
			if cache != nil {
				cache.Put(key, items, ttl)
			}
			b.reset()
			steady.recordSuccess()
			return items, nil
		}
		var rateLimited *hostclient.RateLimitError
		if asRateLimit(err, &rateLimited) {
			wait := b.next(rateLimited.RetryAfter)
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return nil, err
	}
}

func asRateLimit(err error, target **hostclient.RateLimitError) bool {
	rl, ok := err.(*hostclient.RateLimitError)
	if ok {
		*target = rl
	}
	return ok
}

func buildCandidates(merged map[string]*mergedItem, cfg Config) []artifact.Candidate {
	window := cfg.WindowDays
	if window <= 0 {
		window = 180
	}
	now := time.Now().UTC()

	candidates := make([]artifact.Candidate, 0, len(merged))
	for repoID, entry := range merged {
		laneNames := make([]string, 0, len(entry.lanes))
		for name := range entry.lanes {
			laneNames = append(laneNames, name)
		}
		daysSincePush := now.Sub(entry.item.LastPush).Hours() / 24
		tier1 := score.Tier1(score.Tier1Inputs{
			DaysSincePush: daysSincePush,
			WindowDays:    window,
			Stars:         entry.item.Stars,
			Forks:         entry.item.Forks,
			LaneHits:      len(laneNames),
		}, cfg.Weights)

		candidates = append(candidates, artifact.Candidate{
			RepoID:      repoID,
			URL:         entry.item.URL,
			Stars:       entry.item.Stars,
			Forks:       entry.item.Forks,
			LastPush:    entry.item.LastPush,
			License:     entry.item.License,
			Description: entry.item.Description,
			Topics:      entry.item.Topics,
			Lanes:       laneNames,
			Tier1Score:  tier1,
		})
	}
	return candidates
}

func cacheKey(query string, page int) string {
	return fmt.Sprintf("%x", sha256Sum(fmt.Sprintf("%s|%d", query, page)))
}
