package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redline-eval/redline/pkg/arena"
	"github.com/redline-eval/redline/pkg/judge"
	"github.com/redline-eval/redline/pkg/scoring"
)

// TerminalRenderer renders results as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// maxEvidence caps the evidence lines shown per component.
const maxEvidence = 5

func categoryColor(c scoring.RiskCategory) string {
	if noColor() {
		return ""
	}
	switch c {
	case scoring.RiskLow:
		return colorGreen
	case scoring.RiskMedium:
		return colorYellow
	case scoring.RiskHigh, scoring.RiskVeryHigh, scoring.RiskCritical:
		return colorRed
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, report *Report) error {
	eval := report.Evaluation
	cc := categoryColor(eval.RiskCategory)

	// Header
	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("Redline: %s, risk %d (%s)",
			colored(string(eval.Classification), cc), eval.RiskScore, eval.RiskCategory)))
	if eval.ScoreDelta != nil {
		fmt.Fprintf(w, "Change from previous: %+d\n\n", *eval.ScoreDelta)
	}

	// Components
	fmt.Fprintln(w, "Components:")
	for _, key := range scoring.ComponentKeys {
		fmt.Fprintf(w, "  %-28s %3d\n", scoring.ComponentName(key), eval.ComponentScores.Int(key))
	}
	if len(eval.NotEvaluated) > 0 {
		fmt.Fprintf(w, "  %s\n", dim("not evaluated: "+strings.Join(eval.NotEvaluated, ", ")))
	}
	fmt.Fprintln(w)

	// Findings
	if len(eval.Redline) == 0 {
		fmt.Fprintln(w, "No findings.")
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, "Findings:")
		for _, key := range scoring.ComponentKeys {
			entry, ok := eval.Redline[key]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  (+%d) %s", eval.ComponentScores.Int(key), bold(scoring.ComponentName(key)))
			if len(entry.Evidence) > 0 {
				fmt.Fprintf(w, ": %s", entry.Evidence[0].Pattern)
			}
			fmt.Fprintln(w)

			shown := min(len(entry.Evidence), maxEvidence)
			for i := 1; i < shown; i++ {
				fmt.Fprintf(w, "         %s\n", dim(entry.Evidence[i].Pattern))
			}
			if len(entry.Evidence) > maxEvidence {
				fmt.Fprintf(w, "         %s\n", dim(fmt.Sprintf("... and %d more", len(entry.Evidence)-maxEvidence)))
			}
		}
		fmt.Fprintln(w)
	}

	if report.Hybrid != nil {
		fmt.Fprintf(w, "%s %s\n\n", bold("Hybrid:"), hybridLine(report.Hybrid))
	}

	// Suggestions
	if len(report.Critique) > 0 {
		fmt.Fprintln(w, "Suggested revisions:")
		for _, s := range report.Critique {
			fmt.Fprintf(w, "  • %s\n", s.Title)
			if s.Description != "" {
				// Wrap description with indent
				for _, line := range wrapText(s.Description, 70) {
					fmt.Fprintf(w, "    %s\n", dim(line))
				}
			}
		}
		fmt.Fprintln(w)
	}

	return nil
}

func hybridLine(h *judge.HybridScoreResult) string {
	if h.FallbackUsed {
		return fmt.Sprintf("final %.3f (rule score only, fallback: %s)", h.FinalScore, h.FallbackReason)
	}
	llm := 0.0
	if h.LLMScore != nil {
		llm = *h.LLMScore
	}
	return fmt.Sprintf("final %.3f (rule %.3f, judge %.3f)", h.FinalScore, h.RuleScore, llm)
}

func (r *TerminalRenderer) RenderArena(w io.Writer, result *arena.ArenaResult) error {
	fmt.Fprintf(w, "%s\n\n", bold(fmt.Sprintf("Arena %s: %s after %d round(s)",
		result.Scenario.Name, result.State, len(result.Records))))

	for _, rec := range result.Records {
		eval := rec.Evaluation
		line := fmt.Sprintf("  Round %d  risk %3d  %s", rec.Round, eval.RiskScore,
			colored(string(eval.Classification), categoryColor(eval.RiskCategory)))
		if rec.ScoreDelta != nil {
			line += dim(fmt.Sprintf("  (%+d)", *rec.ScoreDelta))
		}
		fmt.Fprintln(w, line)
	}
	if len(result.Records) > 0 {
		fmt.Fprintln(w)
	}

	if result.Error != "" {
		fmt.Fprintf(w, "%s %s\n\n", colored("Error:", colorRed), result.Error)
	}

	if best, ok := result.Best(); ok {
		fmt.Fprintf(w, "%s\n", bold(fmt.Sprintf("Best narrative (round %d, risk %d):", best.Round, best.Evaluation.RiskScore)))
		for _, line := range wrapText(best.Narrative, 76) {
			fmt.Fprintf(w, "  %s\n", line)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
