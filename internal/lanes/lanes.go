// Package lanes implements the Search-Lane Builder (spec.md §4.3):
// translate Component Targets into a deduplicated set of named remote
// search queries.
//
// Grounded on the Search Hints carried by internal/artifact's
// ComponentTarget and on the query-quality-filter idiom used across
// the example pack's search/discovery clients (minimum stars,
// push-recency, non-fork, non-archived clauses appended to a base
// query string).
package lanes

import (
	"fmt"
	"sort"
	"strings"

	"scout/internal/artifact"
)

// QualityFilters are the quality clauses appended to every query
// (spec.md §4.3): minimum stars, push-recency window, non-fork,
// non-archived.
type QualityFilters struct {
	MinStars      int
	PushWithinDays int
}

// DefaultQualityFilters matches the window used by Tier-1 scoring by
// default, so discovery and scoring reason about the same recency
// horizon unless a caller overrides one independently.
func DefaultQualityFilters() QualityFilters {
	return QualityFilters{MinStars: 10, PushWithinDays: 180}
}

// Lane is one named remote query.
type Lane struct {
	Name  string
	Query string
}

const maxTopicLanes = 5

// Build produces the deduplicated, ordered lane set for targets.
// primaryLanguage overrides the language bias baked into the targets'
// search hints when non-empty.
func Build(targets []artifact.ComponentTarget, primaryLanguage string, qf QualityFilters) []Lane {
	seen := make(map[string]bool)
	var result []Lane

	add := func(name, query string) {
		query = appendQualityClauses(query, qf)
		if seen[query] {
			return
		}
		seen[query] = true
		result = append(result, Lane{Name: name, Query: query})
	}

	// One language+keywords union lane.
	lang := primaryLanguage
	keywordSet := make(map[string]bool)
	var keywords []string
	for _, t := range targets {
		if lang == "" {
			lang = t.Hints.LanguageBias
		}
		for _, kw := range t.Hints.Keywords {
			if !keywordSet[kw] {
				keywordSet[kw] = true
				keywords = append(keywords, kw)
			}
		}
	}
	if len(keywords) > 0 {
		query := buildUnionQuery(lang, keywords)
		add("language-keywords", query)
	}

	// One lane per distinct topic, up to a cap.
	topicSet := make(map[string]bool)
	var topics []string
	for _, t := range targets {
		for _, topic := range t.Hints.Topics {
			if !topicSet[topic] {
				topicSet[topic] = true
				topics = append(topics, topic)
			}
		}
	}
	sort.Strings(topics)
	for i, topic := range topics {
		if i >= maxTopicLanes {
			break
		}
		add(fmt.Sprintf("topic-%s", topic), fmt.Sprintf("topic:%s", topic))
	}

	// Kind-specific lanes, one per target kind.
	for _, t := range targets {
		query := fmt.Sprintf("%s in:name,description,topics", strings.Join(t.Hints.Keywords, " OR "))
		add(fmt.Sprintf("kind-%s", t.Kind), query)
	}

	return result
}

func buildUnionQuery(lang string, keywords []string) string {
	clause := strings.Join(keywords, " OR ")
	if lang != "" {
		return fmt.Sprintf("(%s) language:%s", clause, lang)
	}
	return fmt.Sprintf("(%s)", clause)
}

func appendQualityClauses(query string, qf QualityFilters) string {
	var b strings.Builder
	b.WriteString(query)
	if qf.MinStars > 0 {
		fmt.Fprintf(&b, " stars:>=%d", qf.MinStars)
	}
	if qf.PushWithinDays > 0 {
		fmt.Fprintf(&b, " pushed:>=-%dd", qf.PushWithinDays)
	}
	b.WriteString(" fork:false archived:false")
	return b.String()
}
