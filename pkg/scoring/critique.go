package scoring

import (
	"fmt"
	"strings"
)

// Suggestion is a human- and machine-readable revision for a narrative.
type Suggestion struct {
	Component   string   `json:"component,omitempty"` // empty when the suggestion covers the whole narrative
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Patterns    []string `json:"patterns,omitempty"` // evidence the suggestion addresses
}

// Critique turns a redline into revision suggestions, ordered by component.
// An empty narrative gets a single suggestion to write one.
func Critique(result *EvaluationResult) []Suggestion {
	if result == nil {
		return nil
	}
	if isEmptyEvaluation(result) {
		return []Suggestion{{
			Title:       "Write a narrative",
			Description: "The narrative is empty. Describe the technical uncertainty the work faced and the experimentation that resolved it, with measured results.",
			Patterns:    []string{EmptyNarrativePattern},
		}}
	}

	var suggestions []Suggestion
	for _, key := range ComponentKeys {
		entry, ok := result.Redline[key]
		if !ok {
			continue
		}
		patterns := make([]string, 0, len(entry.Evidence))
		for _, ev := range entry.Evidence {
			patterns = append(patterns, ev.Pattern)
		}

		switch key {
		case KeyRoutineEngineering:
			suggestions = append(suggestions, Suggestion{
				Component:   key,
				Title:       "Remove routine engineering language",
				Description: fmt.Sprintf("The narrative describes excluded activity (%s). Describe the technical uncertainty the work resolved instead.", strings.Join(patterns, ", ")),
				Patterns:    patterns,
			})
		case KeyVagueness:
			suggestions = append(suggestions, Suggestion{
				Component:   key,
				Title:       "Replace vague claims with technical detail",
				Description: fmt.Sprintf("Phrases like %s assert value without evidence. Name the techniques, parameters and results.", strings.Join(patterns, ", ")),
				Patterns:    patterns,
			})
		case KeyBusinessRisk:
			suggestions = append(suggestions, Suggestion{
				Component:   key,
				Title:       "Reframe business goals as technical objectives",
				Description: fmt.Sprintf("Business considerations (%s) are not technical uncertainty. State the technical capability, method or design that was uncertain.", strings.Join(patterns, ", ")),
				Patterns:    patterns,
			})
		case KeyExperimentation, KeySpecificity:
			for _, ev := range entry.Evidence {
				element, ok := strings.CutPrefix(ev.Pattern, "missing:")
				if !ok {
					continue
				}
				suggestions = append(suggestions, elementSuggestion(key, element, ev))
			}
		}
	}
	return suggestions
}

func isEmptyEvaluation(result *EvaluationResult) bool {
	for _, entry := range result.Redline {
		for _, ev := range entry.Evidence {
			if ev.Pattern == EmptyNarrativePattern {
				return true
			}
		}
	}
	return false
}

func elementSuggestion(key, element string, ev Detection) Suggestion {
	s := Suggestion{Component: key, Patterns: []string{ev.Pattern}}
	switch element {
	case "uncertainty":
		s.Title = "State the technical uncertainty"
		s.Description = "Say what was not known at the outset about capability, method or design."
	case "alternatives":
		s.Title = "Describe the alternatives evaluated"
		s.Description = "List the approaches considered and how they were tested against each other."
	case "failure":
		s.Title = "Document failed attempts"
		s.Description = "Record which approaches did not work and why they were rejected."
	case "metrics":
		s.Title = "Quantify the results"
		s.Description = "Report measured values with units, for example latency in ms or yield in percent."
	case "baseline":
		s.Title = "State the baseline"
		s.Description = "Give the starting point each result is measured against."
	default:
		s.Title = "Add " + element
		s.Description = ev.Rationale
	}
	return s
}
