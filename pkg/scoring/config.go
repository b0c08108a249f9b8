package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule is one entry of a detector's pattern table.
type Rule struct {
	Pattern   string `yaml:"pattern" json:"pattern"`
	Rationale string `yaml:"rationale,omitempty" json:"rationale,omitempty"`
	Weight    int    `yaml:"weight,omitempty" json:"weight,omitempty"` // penalty when matched (keyword tables only)
	Regex     bool   `yaml:"regex,omitempty" json:"regex,omitempty"`
}

// KeywordTable configures a detector that penalizes matched language.
type KeywordTable struct {
	MaxPenalty int    `yaml:"max_penalty" json:"max_penalty"`
	Rules      []Rule `yaml:"rules" json:"rules"`
}

// Element is a required element of a narrative; any matching rule satisfies it.
type Element struct {
	Name      string `yaml:"name" json:"name"`
	Rationale string `yaml:"rationale" json:"rationale"`
	Rules     []Rule `yaml:"rules" json:"rules"`
}

// ElementTable configures a detector that penalizes missing elements.
type ElementTable struct {
	MaxPenalty        int       `yaml:"max_penalty" json:"max_penalty"`
	PenaltyPerMissing int       `yaml:"penalty_per_missing" json:"penalty_per_missing"`
	Elements          []Element `yaml:"elements" json:"elements"`
}

// RuleSet holds the pattern tables for every detector.
// Read-only once loaded.
type RuleSet struct {
	RoutineEngineering KeywordTable `yaml:"routine_engineering" json:"routine_engineering"`
	Vagueness          KeywordTable `yaml:"vagueness" json:"vagueness"`
	BusinessRisk       KeywordTable `yaml:"business_risk" json:"business_risk"`
	Experimentation    ElementTable `yaml:"experimentation" json:"experimentation"`
	Specificity        ElementTable `yaml:"specificity" json:"specificity"`
}

// Caps returns each component's max penalty keyed by component key.
func (rs *RuleSet) Caps() map[string]int {
	return map[string]int{
		KeyRoutineEngineering: rs.RoutineEngineering.MaxPenalty,
		KeyVagueness:          rs.Vagueness.MaxPenalty,
		KeyBusinessRisk:       rs.BusinessRisk.MaxPenalty,
		KeyExperimentation:    rs.Experimentation.MaxPenalty,
		KeySpecificity:        rs.Specificity.MaxPenalty,
	}
}

// Validate checks that every table is well formed and that the caps sum to 100.
func (rs *RuleSet) Validate() error {
	keyword := map[string]KeywordTable{
		KeyRoutineEngineering: rs.RoutineEngineering,
		KeyVagueness:          rs.Vagueness,
		KeyBusinessRisk:       rs.BusinessRisk,
	}
	for _, key := range []string{KeyRoutineEngineering, KeyVagueness, KeyBusinessRisk} {
		t := keyword[key]
		if len(t.Rules) == 0 {
			return fmt.Errorf("%s: no rules", key)
		}
		for i, r := range t.Rules {
			if r.Weight <= 0 {
				return fmt.Errorf("%s: rule %d (%q): weight must be positive", key, i, r.Pattern)
			}
			if _, err := compileRule(r); err != nil {
				return fmt.Errorf("%s: rule %d: %w", key, i, err)
			}
		}
	}

	elements := map[string]ElementTable{
		KeyExperimentation: rs.Experimentation,
		KeySpecificity:     rs.Specificity,
	}
	for _, key := range []string{KeyExperimentation, KeySpecificity} {
		t := elements[key]
		if len(t.Elements) == 0 {
			return fmt.Errorf("%s: no elements", key)
		}
		if t.PenaltyPerMissing <= 0 {
			return fmt.Errorf("%s: penalty_per_missing must be positive", key)
		}
		for _, el := range t.Elements {
			if el.Name == "" {
				return fmt.Errorf("%s: element without a name", key)
			}
			if len(el.Rules) == 0 {
				return fmt.Errorf("%s: element %s: no rules", key, el.Name)
			}
			for i, r := range el.Rules {
				if _, err := compileRule(r); err != nil {
					return fmt.Errorf("%s: element %s: rule %d: %w", key, el.Name, i, err)
				}
			}
		}
	}

	caps := rs.Caps()
	total := 0
	for _, key := range ComponentKeys {
		c := caps[key]
		if c <= 0 {
			return fmt.Errorf("%s: max_penalty must be positive", key)
		}
		total += c
	}
	if total != 100 {
		return fmt.Errorf("component max penalties sum to %d, want 100", total)
	}
	return nil
}

// ParseRules decodes and validates a YAML rule set.
func ParseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return &rs, nil
}

// LoadRules reads a rule set from a YAML file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return ParseRules(data)
}

var (
	defaultRulesOnce sync.Once
	defaultRules     *RuleSet
)

// DefaultRules returns the embedded rule set. It panics if the embedded
// document is invalid, which is a build defect.
func DefaultRules() *RuleSet {
	defaultRulesOnce.Do(func() {
		rs, err := ParseRules(defaultRulesYAML)
		if err != nil {
			panic(fmt.Sprintf("scoring: embedded rules: %v", err))
		}
		defaultRules = rs
	})
	return defaultRules
}

// matcher is a compiled Rule.
type matcher struct {
	rule    Rule
	re      *regexp.Regexp
	literal string
}

func compileRule(r Rule) (matcher, error) {
	if strings.TrimSpace(r.Pattern) == "" {
		return matcher{}, fmt.Errorf("empty pattern")
	}
	if !r.Regex {
		return matcher{rule: r, literal: strings.ToLower(r.Pattern)}, nil
	}
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return matcher{}, fmt.Errorf("compiling %q: %w", r.Pattern, err)
	}
	return matcher{rule: r, re: re}, nil
}

func compileRules(rules []Rule) ([]matcher, error) {
	out := make([]matcher, 0, len(rules))
	for _, r := range rules {
		m, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// match reports whether the rule matches. lower must be strings.ToLower(text).
func (m matcher) match(text, lower string) bool {
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(lower, m.literal)
}
