package scoring

import (
	"fmt"
	"strings"
)

// ElementsDetector penalizes each required element the narrative lacks.
// Used for experimentation (uncertainty, alternatives, failure) and
// specificity (metrics, baseline).
type ElementsDetector struct {
	key               string
	name              string
	maxPenalty        int
	penaltyPerMissing int
	elements          []compiledElement
}

type compiledElement struct {
	Element
	matchers []matcher
}

// NewElementsDetector compiles an element table into a detector.
func NewElementsDetector(key, name string, table ElementTable) (*ElementsDetector, error) {
	d := &ElementsDetector{
		key:               key,
		name:              name,
		maxPenalty:        table.MaxPenalty,
		penaltyPerMissing: table.PenaltyPerMissing,
	}
	for _, el := range table.Elements {
		matchers, err := compileRules(el.Rules)
		if err != nil {
			return nil, fmt.Errorf("%s: element %s: %w", key, el.Name, err)
		}
		d.elements = append(d.elements, compiledElement{Element: el, matchers: matchers})
	}
	return d, nil
}

func (d *ElementsDetector) Key() string     { return d.key }
func (d *ElementsDetector) Name() string    { return d.name }
func (d *ElementsDetector) MaxPenalty() int { return d.maxPenalty }

// FlagName returns the flag key reported for an element, e.g. "uncertainty_found".
func FlagName(element string) string {
	return element + "_found"
}

func (d *ElementsDetector) Analyze(text string) ComponentResult {
	result := ComponentResult{
		Key:        d.key,
		Name:       d.name,
		MaxPenalty: d.maxPenalty,
		Flags:      make(map[string]bool, len(d.elements)),
	}

	blank := isBlank(text)
	lower := strings.ToLower(text)
	missing := 0
	for _, el := range d.elements {
		found := !blank && el.present(text, lower)
		result.Flags[FlagName(el.Name)] = found
		if found {
			continue
		}
		missing++
		result.Detections = append(result.Detections, Detection{
			Pattern:   "missing:" + el.Name,
			Rationale: el.Rationale,
		})
	}

	// With nothing to read every element is missing; absence is scored at the cap.
	if blank {
		result.Penalty = d.maxPenalty
		return result
	}

	result.Penalty = clamp(missing*d.penaltyPerMissing, 0, d.maxPenalty)
	return result
}

func (el compiledElement) present(text, lower string) bool {
	for _, m := range el.matchers {
		if m.match(text, lower) {
			return true
		}
	}
	return false
}
