// Package targets implements the Target Inferer stage (spec.md §4.2):
// apply a fixed set of detectors over a Fingerprint to produce ranked
// Component Targets with search hints.
//
// Grounded on the DiscoveryWorker/WorkerRegistry idiom in
// internal/discovery/types.go and internal/discovery/registry.go — one
// small interface, a fixed registered set, each implementation pure
// over its inputs.
package targets

import (
	"sort"

	"scout/internal/artifact"
)

const minConfidence = 0.2

// Signal is one piece of weighted evidence a Detector contributes
// toward a kind's confidence.
type Signal struct {
	Weight   float64
	Evidence string
}

// Detector is a pure rule over a root path and its Fingerprint. Order
// of registration must not affect output ordering (spec.md §4.2).
type Detector interface {
	Kind() artifact.Kind
	Detect(root string, fp *artifact.Fingerprint) []Signal
}

// DefaultDetectors returns the fixed detector set spec.md §4.2
// requires: one per Component Kind.
func DefaultDetectors() []Detector {
	return []Detector{
		mcpServerDetector{},
		cliDetector{},
		skillDetector{},
		hookDetector{},
		pluginDetector{},
		libraryDetector{},
	}
}

// Infer runs detectors over fp, producing ordered Component Targets.
// Confidences are the weighted evidence sum, capped at 1.0 and rounded
// to two decimal places. Targets below minConfidence are dropped.
// Final ordering is confidence descending, kind ascending as a stable
// tie-break (the spec leaves ties unspecified; a deterministic
// tie-break keeps output byte-identical across runs).
func Infer(root string, fp *artifact.Fingerprint, detectors []Detector) []artifact.ComponentTarget {
	bias := dominantLanguage(fp.Languages)

	targets := make([]artifact.ComponentTarget, 0, len(detectors))
	for _, d := range detectors {
		signals := d.Detect(root, fp)
		if len(signals) == 0 {
			continue
		}
		var sum float64
		evidence := make([]string, 0, len(signals))
		for _, s := range signals {
			sum += s.Weight
			evidence = append(evidence, s.Evidence)
		}
		confidence := artifact.Round2(artifact.Clamp01(sum))
		if confidence < minConfidence {
			continue
		}
		targets = append(targets, artifact.ComponentTarget{
			Kind:       d.Kind(),
			Confidence: confidence,
			Evidence:   evidence,
			Hints:      hintsFor(d.Kind(), bias),
		})
	}

	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].Confidence != targets[j].Confidence {
			return targets[i].Confidence > targets[j].Confidence
		}
		return targets[i].Kind < targets[j].Kind
	})
	return targets
}

func dominantLanguage(languages map[string]int) string {
	best, bestCount := "", 0
	keys := make([]string, 0, len(languages))
	for k := range languages {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic tie-break on language name
	for _, k := range keys {
		if languages[k] > bestCount {
			best, bestCount = k, languages[k]
		}
	}
	return best
}

var kindKeywords = map[artifact.Kind][]string{
	artifact.KindMCPServer: {"mcp", "model context protocol", "server"},
	artifact.KindCLI:       {"cli", "command line", "terminal"},
	artifact.KindSkill:     {"skill", "claude skill", "agent skill"},
	artifact.KindHook:      {"hook", "claude hook", "lifecycle hook"},
	artifact.KindPlugin:    {"plugin", "extension"},
	artifact.KindLibrary:   {"library", "sdk", "package"},
}

var kindTopics = map[artifact.Kind][]string{
	artifact.KindMCPServer: {"mcp", "model-context-protocol"},
	artifact.KindCLI:       {"cli", "command-line-tool"},
	artifact.KindSkill:     {"claude", "agent-skill"},
	artifact.KindHook:      {"claude", "hooks"},
	artifact.KindPlugin:    {"plugin"},
	artifact.KindLibrary:   {"library"},
}

func hintsFor(kind artifact.Kind, languageBias string) artifact.SearchHints {
	return artifact.SearchHints{
		Keywords:     append([]string{}, kindKeywords[kind]...),
		Topics:       append([]string{}, kindTopics[kind]...),
		LanguageBias: languageBias,
	}
}
