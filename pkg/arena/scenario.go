package arena

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Difficulty levels steer the generator toward clearer or murkier projects.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Participant identifies an agent taking part in a run. The loop carries
// participants through to the result but never interprets them.
type Participant struct {
	Role string `yaml:"role" json:"role"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Scenario configures one arena run.
type Scenario struct {
	Name            string        `yaml:"name" json:"name"`
	Difficulty      string        `yaml:"difficulty" json:"difficulty"`
	Topic           string        `yaml:"topic" json:"topic"`
	MaxIterations   int           `yaml:"max_iterations" json:"max_iterations"`
	TargetRiskScore int           `yaml:"target_risk_score" json:"target_risk_score"`
	Participants    []Participant `yaml:"participants" json:"participants,omitempty"`
}

// DefaultScenario returns the settings used when a scenario omits them.
func DefaultScenario() Scenario {
	return Scenario{
		Name:            "default",
		Difficulty:      DifficultyMedium,
		MaxIterations:   5,
		TargetRiskScore: 19,
	}
}

// MaxIterationsLimit is the largest accepted max_iterations.
const MaxIterationsLimit = 20

// Validate checks the loop bounds.
func (s Scenario) Validate() error {
	if s.MaxIterations <= 0 || s.MaxIterations > MaxIterationsLimit {
		return fmt.Errorf("max_iterations must be within [1,%d], got %d", MaxIterationsLimit, s.MaxIterations)
	}
	if s.TargetRiskScore < 0 || s.TargetRiskScore > 100 {
		return fmt.Errorf("target_risk_score must be within [0,100], got %d", s.TargetRiskScore)
	}
	switch s.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("unknown difficulty %q", s.Difficulty)
	}
	return nil
}

// ParseScenario decodes a YAML scenario over the defaults and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}
