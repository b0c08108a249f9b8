package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/redline-eval/redline/pkg/arena"
	"github.com/redline-eval/redline/pkg/scoring"
)

// MarkdownRenderer produces a Markdown redline memo, suitable for review
// comments and documentation files.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, report *Report) error {
	_, err := io.WriteString(w, buildMarkdownReport(report))
	return err
}

func (r *MarkdownRenderer) RenderArena(w io.Writer, result *arena.ArenaResult) error {
	_, err := io.WriteString(w, buildMarkdownArena(result))
	return err
}

// Verdict maps a risk category onto a review verdict.
func Verdict(c scoring.RiskCategory) string {
	switch c {
	case scoring.RiskLow:
		return "pass"
	case scoring.RiskMedium:
		return "revise"
	default:
		return "fail"
	}
}

func buildMarkdownReport(report *Report) string {
	eval := report.Evaluation
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Redline: %s, risk %d (%s)\n\n", eval.Classification, eval.RiskScore, eval.RiskCategory)
	fmt.Fprintf(&sb, "Verdict: **%s**\n\n", Verdict(eval.RiskCategory))

	// Component scores
	sb.WriteString("### Components\n\n")
	sb.WriteString("| Component | Penalty |\n|-----------|---------|\n")
	for _, key := range scoring.ComponentKeys {
		fmt.Fprintf(&sb, "| %s | %d |\n", scoring.ComponentName(key), eval.ComponentScores.Int(key))
	}
	sb.WriteString("\n")

	// Findings (top 3 evidence items each)
	sb.WriteString("### Findings\n\n")
	if len(eval.Redline) == 0 {
		sb.WriteString("_No findings._\n")
	}
	for _, key := range scoring.ComponentKeys {
		entry, ok := eval.Redline[key]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "- **%s** (+%d)\n", scoring.ComponentName(key), eval.ComponentScores.Int(key))
		shown := min(len(entry.Evidence), 3)
		for i := 0; i < shown; i++ {
			ev := entry.Evidence[i]
			fmt.Fprintf(&sb, "  - `%s`: %s\n", ev.Pattern, ev.Rationale)
		}
		if len(entry.Evidence) > shown {
			fmt.Fprintf(&sb, "  - _... and %d more_\n", len(entry.Evidence)-shown)
		}
	}
	sb.WriteString("\n")

	if report.Hybrid != nil {
		fmt.Fprintf(&sb, "### Hybrid score\n\n%s\n\n", hybridLine(report.Hybrid))
	}

	if len(report.Critique) > 0 {
		sb.WriteString("### Suggestions\n\n")
		for _, s := range report.Critique {
			fmt.Fprintf(&sb, "- **%s**: %s\n", s.Title, s.Description)
		}
	}

	return sb.String()
}

func buildMarkdownArena(result *arena.ArenaResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Arena %s: %s\n\n", result.Scenario.Name, result.State)
	fmt.Fprintf(&sb, "Difficulty %s, target risk %d, budget %d rounds.\n\n",
		result.Scenario.Difficulty, result.Scenario.TargetRiskScore, result.Scenario.MaxIterations)

	if len(result.Records) > 0 {
		sb.WriteString("| Round | Risk | Classification | Change |\n|-------|------|----------------|--------|\n")
		for _, rec := range result.Records {
			change := ""
			if rec.ScoreDelta != nil {
				change = fmt.Sprintf("%+d", *rec.ScoreDelta)
			}
			fmt.Fprintf(&sb, "| %d | %d | %s | %s |\n", rec.Round, rec.Evaluation.RiskScore, rec.Evaluation.Classification, change)
		}
		sb.WriteString("\n")
	}

	if result.Error != "" {
		fmt.Fprintf(&sb, "> **Error:** %s\n\n", result.Error)
	}

	if best, ok := result.Best(); ok {
		fmt.Fprintf(&sb, "### Best narrative (round %d)\n\n%s\n", best.Round, best.Narrative)
	}
	return sb.String()
}
