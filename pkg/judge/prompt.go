package judge

import (
	"fmt"
	"strings"

	"github.com/redline-eval/redline/pkg/scoring"
)

// SystemPrompt renders the judge's fixed instructions from the same rule set
// the detectors use, so both scorers apply one rubric.
func SystemPrompt(rs *scoring.RuleSet) string {
	var b strings.Builder
	b.WriteString("You assess R&D project narratives against the IRS Section 41 four-part test ")
	b.WriteString("for qualified research. Judge only what the narrative states.\n\n")

	b.WriteString("A qualifying narrative:\n")
	writeElements(&b, rs.Experimentation)
	writeElements(&b, rs.Specificity)

	b.WriteString("\nEvidence against qualification:\n")
	writeKeywords(&b, "Routine engineering", rs.RoutineEngineering)
	writeKeywords(&b, "Vague or promotional language", rs.Vagueness)
	writeKeywords(&b, "Business rather than technical risk", rs.BusinessRisk)

	b.WriteString("\nRespond with a JSON object only: ")
	b.WriteString(`{"score": <number from 0 to 1, the probability the narrative qualifies>, "rationale": "<one sentence>"}`)
	return b.String()
}

func writeElements(b *strings.Builder, t scoring.ElementTable) {
	for _, el := range t.Elements {
		fmt.Fprintf(b, "- must address %s (penalized when: %s)\n", el.Name, strings.TrimSuffix(el.Rationale, "."))
	}
}

func writeKeywords(b *strings.Builder, title string, t scoring.KeywordTable) {
	patterns := make([]string, 0, len(t.Rules))
	for _, r := range t.Rules {
		if r.Regex {
			continue
		}
		patterns = append(patterns, fmt.Sprintf("%q", r.Pattern))
	}
	fmt.Fprintf(b, "- %s, e.g. %s\n", title, strings.Join(patterns, ", "))
}
