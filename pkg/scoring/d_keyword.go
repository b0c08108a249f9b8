package scoring

import (
	"fmt"
	"strings"
)

// EmptyNarrativePattern is the Detection pattern reported for empty input.
const EmptyNarrativePattern = "empty_narrative"

// KeywordDetector penalizes each matched rule of a keyword table.
// Used for routine engineering, vagueness and business risk language.
type KeywordDetector struct {
	key        string
	name       string
	maxPenalty int
	matchers   []matcher
}

// NewKeywordDetector compiles a keyword table into a detector.
func NewKeywordDetector(key, name string, table KeywordTable) (*KeywordDetector, error) {
	matchers, err := compileRules(table.Rules)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &KeywordDetector{
		key:        key,
		name:       name,
		maxPenalty: table.MaxPenalty,
		matchers:   matchers,
	}, nil
}

func (d *KeywordDetector) Key() string     { return d.key }
func (d *KeywordDetector) Name() string    { return d.name }
func (d *KeywordDetector) MaxPenalty() int { return d.maxPenalty }

func (d *KeywordDetector) Analyze(text string) ComponentResult {
	result := ComponentResult{
		Key:        d.key,
		Name:       d.name,
		MaxPenalty: d.maxPenalty,
	}

	if isBlank(text) {
		result.Penalty = d.maxPenalty
		result.Detections = []Detection{emptyNarrative(d.name)}
		return result
	}

	lower := strings.ToLower(text)
	penalty := 0
	for _, m := range d.matchers {
		if !m.match(text, lower) {
			continue
		}
		penalty += m.rule.Weight
		result.Detections = append(result.Detections, Detection{
			Pattern:   m.rule.Pattern,
			Rationale: m.rule.Rationale,
		})
	}

	result.Penalty = clamp(penalty, 0, d.maxPenalty)
	return result
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func emptyNarrative(name string) Detection {
	return Detection{
		Pattern:   EmptyNarrativePattern,
		Rationale: fmt.Sprintf("Empty narrative: no evidence to assess %s.", strings.ToLower(name)),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
