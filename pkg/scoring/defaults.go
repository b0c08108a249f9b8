package scoring

import "fmt"

// Component display names.
const (
	NameRoutineEngineering = "Routine engineering"
	NameVagueness          = "Vague language"
	NameBusinessRisk       = "Business risk"
	NameExperimentation    = "Process of experimentation"
	NameSpecificity        = "Technical specificity"
)

// ComponentName returns the display name for a component key, or the key
// itself when it is not one of the fixed components.
func ComponentName(key string) string {
	switch key {
	case KeyRoutineEngineering:
		return NameRoutineEngineering
	case KeyVagueness:
		return NameVagueness
	case KeyBusinessRisk:
		return NameBusinessRisk
	case KeyExperimentation:
		return NameExperimentation
	case KeySpecificity:
		return NameSpecificity
	default:
		return key
	}
}

// DetectorsFromRules builds the standard detector set from a rule set.
func DetectorsFromRules(rs *RuleSet) ([]Detector, error) {
	if rs == nil {
		return nil, fmt.Errorf("rule set is nil")
	}

	routine, err := NewKeywordDetector(KeyRoutineEngineering, NameRoutineEngineering, rs.RoutineEngineering)
	if err != nil {
		return nil, err
	}
	vague, err := NewKeywordDetector(KeyVagueness, NameVagueness, rs.Vagueness)
	if err != nil {
		return nil, err
	}
	business, err := NewKeywordDetector(KeyBusinessRisk, NameBusinessRisk, rs.BusinessRisk)
	if err != nil {
		return nil, err
	}
	experimentation, err := NewElementsDetector(KeyExperimentation, NameExperimentation, rs.Experimentation)
	if err != nil {
		return nil, err
	}
	specificity, err := NewElementsDetector(KeySpecificity, NameSpecificity, rs.Specificity)
	if err != nil {
		return nil, err
	}

	return []Detector{routine, vague, business, experimentation, specificity}, nil
}

// DefaultDetectors returns the standard detector set over the embedded rules.
func DefaultDetectors() []Detector {
	detectors, err := DetectorsFromRules(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("scoring: default detectors: %v", err))
	}
	return detectors
}

// NewEngineFromRules is shorthand for NewEngine over DetectorsFromRules.
func NewEngineFromRules(rs *RuleSet) (*Engine, error) {
	detectors, err := DetectorsFromRules(rs)
	if err != nil {
		return nil, err
	}
	return NewEngine(detectors...), nil
}
