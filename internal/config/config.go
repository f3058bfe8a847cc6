// Package config implements the Config Loader (spec.md §4.16):
// layered merge of defaults < global config file < project config
// file < environment variables, validated against a schema that
// applies defaults and range constraints and rejects unknown keys.
//
// Grounded on internal/cost/config.go's `VC_COST_`-prefixed
// LoadFromEnv idiom (strict numeric parsing, fall back to the
// previous layer on a parse failure) and internal/health/config.go's
// YAML-file loading shape, rebuilt on spf13/viper: viper merges the
// defaults and the two config files, and applyEnvOverrides layers the
// environment variables on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"scout/internal/score"
)

// Config is the fully merged, validated configuration every stage
// reads from.
type Config struct {
	// Discovery
	WindowDays           float64
	Tier1Cap             int
	Tier1Weights         score.Weights
	CacheTTLHours         int
	MaxBackoffSeconds     int
	AllowedLicenses       []string
	ExcludedKeywords      []string
	MinStars              int

	// Clone
	CloneBudget int

	// Tier-2
	Tier2Weights score.Tier2Weights

	// Focus
	MaxEntrypointsPerKind int

	// Session / review
	TokenBudget          int
	MaxFilesPerChunk     int
	ReviewTimeoutMinutes int

	// Watch
	LockStaleSeconds int
	PollIntervalHours int

	// Remote API token, sourced from env or the config files. The
	// host-CLI fallback (tokenFromHostCLI) always yields "".
	RemoteAPIToken   string
	RemoteAPIBaseURL string
}

const envPrefix = "SCOUT"

// allowedKeys is the schema's key allow-list; any key present in a
// config file or environment that isn't here is rejected (spec.md
// §4.16: "unknown keys are rejected").
var allowedKeys = map[string]bool{
	"window_days": true, "tier1_cap": true, "cache_ttl_hours": true,
	"max_backoff_seconds": true, "allowed_licenses": true, "excluded_keywords": true,
	"min_stars": true, "clone_budget": true, "max_entrypoints_per_kind": true,
	"token_budget": true, "max_files_per_chunk": true, "review_timeout_minutes": true,
	"lock_stale_seconds": true, "poll_interval_hours": true, "remote_api_token": true,
	"tier1_weights": true, "tier2_weights": true, "remote_api_base_url": true,
}

// Load performs the four-layer merge: defaults, then globalPath (user
// config directory), then projectPath (".scoutrc.json"), then
// environment variables prefixed SCOUT_. A missing or unparseable file
// at either path is skipped, and the merge keeps the earlier layers;
// a file that exists but cannot be read is an error.
func Load(globalPath, projectPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := mergeFile(v, globalPath); err != nil {
		return nil, fmt.Errorf("%w: global config: %v", ErrConfigInvalid, err)
	}
	if err := mergeFile(v, projectPath); err != nil {
		return nil, fmt.Errorf("%w: project config: %v", ErrConfigInvalid, err)
	}

	if err := rejectUnknownKeys(v); err != nil {
		return nil, err
	}

	cfg := fromViper(v)
	applyEnvOverrides(cfg)

	if token := os.Getenv(envPrefix + "_REMOTE_API_TOKEN"); token != "" {
		cfg.RemoteAPIToken = token
	} else if cfg.RemoteAPIToken == "" {
		cfg.RemoteAPIToken = tokenFromHostCLI()
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return nil
		}
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("window_days", 180.0)
	v.SetDefault("tier1_cap", 50)
	v.SetDefault("cache_ttl_hours", 24)
	v.SetDefault("max_backoff_seconds", 120)
	v.SetDefault("allowed_licenses", []string{})
	v.SetDefault("excluded_keywords", []string{})
	v.SetDefault("min_stars", 10)
	v.SetDefault("clone_budget", 10)
	v.SetDefault("max_entrypoints_per_kind", 3)
	v.SetDefault("token_budget", 50000)
	v.SetDefault("max_files_per_chunk", 20)
	v.SetDefault("review_timeout_minutes", 30)
	v.SetDefault("lock_stale_seconds", 30)
	v.SetDefault("poll_interval_hours", 24)
	v.SetDefault("remote_api_token", "")
	v.SetDefault("remote_api_base_url", "https://api.github.com")
	w := score.DefaultWeights()
	v.SetDefault("tier1_weights.recency", w.Recency)
	v.SetDefault("tier1_weights.activity", w.Activity)
	v.SetDefault("tier1_weights.lanes", w.Lanes)
	t2 := score.DefaultTier2Weights()
	v.SetDefault("tier2_weights.structural", t2.Structural)
	v.SetDefault("tier2_weights.modernity", t2.Modernity)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		WindowDays:           v.GetFloat64("window_days"),
		Tier1Cap:             v.GetInt("tier1_cap"),
		Tier1Weights: score.Weights{
			Recency:  v.GetFloat64("tier1_weights.recency"),
			Activity: v.GetFloat64("tier1_weights.activity"),
			Lanes:    v.GetFloat64("tier1_weights.lanes"),
		},
		CacheTTLHours:     v.GetInt("cache_ttl_hours"),
		MaxBackoffSeconds: v.GetInt("max_backoff_seconds"),
		AllowedLicenses:   v.GetStringSlice("allowed_licenses"),
		ExcludedKeywords:  v.GetStringSlice("excluded_keywords"),
		MinStars:          v.GetInt("min_stars"),
		CloneBudget:       v.GetInt("clone_budget"),
		Tier2Weights: score.Tier2Weights{
			Structural: v.GetFloat64("tier2_weights.structural"),
			Modernity:  v.GetFloat64("tier2_weights.modernity"),
		},
		MaxEntrypointsPerKind: v.GetInt("max_entrypoints_per_kind"),
		TokenBudget:           v.GetInt("token_budget"),
		MaxFilesPerChunk:      v.GetInt("max_files_per_chunk"),
		ReviewTimeoutMinutes:  v.GetInt("review_timeout_minutes"),
		LockStaleSeconds:      v.GetInt("lock_stale_seconds"),
		PollIntervalHours:     v.GetInt("poll_interval_hours"),
		RemoteAPIToken:        v.GetString("remote_api_token"),
		RemoteAPIBaseURL:      v.GetString("remote_api_base_url"),
	}
}

// applyEnvOverrides layers environment variables over the
// defaults/file-merged cfg, one key at a time. Unlike viper's
// AutomaticEnv (which binds GetInt/GetFloat64 straight to the raw
// string and silently coerces an unparseable value to the zero value),
// each key here is parsed strictly: a SCOUT_* variable that is set but
// fails to parse leaves cfg's previous-layer value untouched, per
// spec.md §4.16's "invalid values fall back to the previous layer".
// Grounded on internal/cost/config.go's LoadFromEnv, which applies the
// same parse-or-skip idiom for VC_COST_*.
func applyEnvOverrides(cfg *Config) {
	overrideFloat64(&cfg.WindowDays, "WINDOW_DAYS")
	overrideInt(&cfg.Tier1Cap, "TIER1_CAP")
	overrideFloat64(&cfg.Tier1Weights.Recency, "TIER1_WEIGHTS_RECENCY")
	overrideFloat64(&cfg.Tier1Weights.Activity, "TIER1_WEIGHTS_ACTIVITY")
	overrideFloat64(&cfg.Tier1Weights.Lanes, "TIER1_WEIGHTS_LANES")
	overrideInt(&cfg.CacheTTLHours, "CACHE_TTL_HOURS")
	overrideInt(&cfg.MaxBackoffSeconds, "MAX_BACKOFF_SECONDS")
	overrideStringSlice(&cfg.AllowedLicenses, "ALLOWED_LICENSES")
	overrideStringSlice(&cfg.ExcludedKeywords, "EXCLUDED_KEYWORDS")
	overrideInt(&cfg.MinStars, "MIN_STARS")
	overrideInt(&cfg.CloneBudget, "CLONE_BUDGET")
	overrideFloat64(&cfg.Tier2Weights.Structural, "TIER2_WEIGHTS_STRUCTURAL")
	overrideFloat64(&cfg.Tier2Weights.Modernity, "TIER2_WEIGHTS_MODERNITY")
	overrideInt(&cfg.MaxEntrypointsPerKind, "MAX_ENTRYPOINTS_PER_KIND")
	overrideInt(&cfg.TokenBudget, "TOKEN_BUDGET")
	overrideInt(&cfg.MaxFilesPerChunk, "MAX_FILES_PER_CHUNK")
	overrideInt(&cfg.ReviewTimeoutMinutes, "REVIEW_TIMEOUT_MINUTES")
	overrideInt(&cfg.LockStaleSeconds, "LOCK_STALE_SECONDS")
	overrideInt(&cfg.PollIntervalHours, "POLL_INTERVAL_HOURS")
	overrideString(&cfg.RemoteAPIBaseURL, "REMOTE_API_BASE_URL")
}

func overrideInt(cur *int, name string) {
	val, ok := os.LookupEnv(envPrefix + "_" + name)
	if !ok || val == "" {
		return
	}
	if parsed, err := strconv.Atoi(val); err == nil {
		*cur = parsed
	}
}

func overrideFloat64(cur *float64, name string) {
	val, ok := os.LookupEnv(envPrefix + "_" + name)
	if !ok || val == "" {
		return
	}
	if parsed, err := strconv.ParseFloat(val, 64); err == nil {
		*cur = parsed
	}
}

func overrideString(cur *string, name string) {
	if val, ok := os.LookupEnv(envPrefix + "_" + name); ok && val != "" {
		*cur = val
	}
}

func overrideStringSlice(cur *[]string, name string) {
	val, ok := os.LookupEnv(envPrefix + "_" + name)
	if !ok || val == "" {
		return
	}
	parts := strings.Split(val, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	*cur = parts
}

func rejectUnknownKeys(v *viper.Viper) error {
	for _, key := range v.AllKeys() {
		root := key
		for i := 0; i < len(key); i++ {
			if key[i] == '.' {
				root = key[:i]
				break
			}
		}
		if !allowedKeys[root] {
			return fmt.Errorf("%w: unknown config key %q", ErrConfigInvalid, key)
		}
	}
	return nil
}

// tokenFromHostCLI is the secondary token source used when neither
// the environment nor a config file supplies a token. It runs no host
// CLI command and always returns "", so that case leaves the token
// empty; an absent token is handled by callers as "unauthenticated".
func tokenFromHostCLI() string {
	return ""
}

// ReviewTimeout returns the reviewer subprocess timeout as a
// time.Duration.
func (c *Config) ReviewTimeout() time.Duration {
	return time.Duration(c.ReviewTimeoutMinutes) * time.Minute
}

// CacheTTL returns the API response cache TTL as a time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// MaxBackoff returns the discovery engine's backoff ceiling.
func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffSeconds) * time.Second
}

// LockStale returns the watch lock's stale-reclaim threshold.
func (c *Config) LockStale() time.Duration {
	return time.Duration(c.LockStaleSeconds) * time.Second
}
