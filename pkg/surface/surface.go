// Package surface defines output rendering for redline results.
// Implementations handle different output targets: terminal, Markdown, JSON.
package surface

import (
	"io"

	"github.com/redline-eval/redline/pkg/arena"
	"github.com/redline-eval/redline/pkg/judge"
	"github.com/redline-eval/redline/pkg/scoring"
)

// Report is everything known about one evaluated narrative.
type Report struct {
	Evaluation *scoring.EvaluationResult `json:"evaluation"`
	Critique   []scoring.Suggestion      `json:"critique,omitempty"`
	Hybrid     *judge.HybridScoreResult  `json:"hybrid,omitempty"`
}

// NewReport builds a Report with the critique derived from eval.
func NewReport(eval *scoring.EvaluationResult) *Report {
	return &Report{Evaluation: eval, Critique: scoring.Critique(eval)}
}

// Renderer produces formatted output from results.
type Renderer interface {
	// Render writes a single evaluation report.
	Render(w io.Writer, report *Report) error
	// RenderArena writes the transcript of an arena run.
	RenderArena(w io.Writer, result *arena.ArenaResult) error
}

// ForFormat returns the renderer for an output format name.
func ForFormat(format string) (Renderer, bool) {
	switch format {
	case "text", "":
		return &TerminalRenderer{}, true
	case "json":
		return &JSONRenderer{}, true
	case "markdown", "md":
		return &MarkdownRenderer{}, true
	default:
		return nil, false
	}
}
