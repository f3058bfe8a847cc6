package config

import "fmt"

// Validate applies the schema's range constraints (spec.md §4.16).
// It runs on the merged result of all layers; this pass enforces the
// semantic ranges.
func Validate(c *Config) error {
	if c.WindowDays <= 0 {
		return fmt.Errorf("%w: window_days must be positive, got %v", ErrConfigInvalid, c.WindowDays)
	}
	if c.Tier1Cap < 0 {
		return fmt.Errorf("%w: tier1_cap must be non-negative, got %d", ErrConfigInvalid, c.Tier1Cap)
	}
	if sum := c.Tier1Weights.Recency + c.Tier1Weights.Activity + c.Tier1Weights.Lanes; sum > 1.0001 {
		return fmt.Errorf("%w: tier1_weights must sum to <= 1.0, got %v", ErrConfigInvalid, sum)
	}
	if c.CacheTTLHours < 0 {
		return fmt.Errorf("%w: cache_ttl_hours must be non-negative, got %d", ErrConfigInvalid, c.CacheTTLHours)
	}
	if c.MaxBackoffSeconds <= 0 {
		return fmt.Errorf("%w: max_backoff_seconds must be positive, got %d", ErrConfigInvalid, c.MaxBackoffSeconds)
	}
	if c.MinStars < 0 {
		return fmt.Errorf("%w: min_stars must be non-negative, got %d", ErrConfigInvalid, c.MinStars)
	}
	if c.CloneBudget < 0 {
		return fmt.Errorf("%w: clone_budget must be non-negative, got %d", ErrConfigInvalid, c.CloneBudget)
	}
	if c.MaxEntrypointsPerKind <= 0 {
		return fmt.Errorf("%w: max_entrypoints_per_kind must be positive, got %d", ErrConfigInvalid, c.MaxEntrypointsPerKind)
	}
	if c.TokenBudget <= 0 {
		return fmt.Errorf("%w: token_budget must be positive, got %d", ErrConfigInvalid, c.TokenBudget)
	}
	if c.MaxFilesPerChunk <= 0 {
		return fmt.Errorf("%w: max_files_per_chunk must be positive, got %d", ErrConfigInvalid, c.MaxFilesPerChunk)
	}
	if c.ReviewTimeoutMinutes <= 0 {
		return fmt.Errorf("%w: review_timeout_minutes must be positive, got %d", ErrConfigInvalid, c.ReviewTimeoutMinutes)
	}
	if c.LockStaleSeconds <= 0 {
		return fmt.Errorf("%w: lock_stale_seconds must be positive, got %d", ErrConfigInvalid, c.LockStaleSeconds)
	}
	if c.PollIntervalHours <= 0 {
		return fmt.Errorf("%w: poll_interval_hours must be positive, got %d", ErrConfigInvalid, c.PollIntervalHours)
	}
	return nil
}
