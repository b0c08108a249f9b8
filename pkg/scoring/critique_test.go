package scoring_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/redline-eval/redline/pkg/scoring"
)

func TestCritique(t *testing.T) {
	result := defaultEngine().Evaluate("The team performed routine maintenance.")
	suggestions := scoring.Critique(result)

	// routine + 3 missing experimentation elements + 2 missing specificity elements
	if len(suggestions) != 6 {
		t.Fatalf("expected 6 suggestions, got %d: %+v", len(suggestions), suggestions)
	}
	if suggestions[0].Component != scoring.KeyRoutineEngineering {
		t.Errorf("expected routine suggestion first, got %s", suggestions[0].Component)
	}
	if len(suggestions[0].Patterns) != 2 {
		t.Errorf("expected routine suggestion to cite 2 patterns, got %v", suggestions[0].Patterns)
	}
	var components, missing []string
	for _, s := range suggestions[1:] {
		components = append(components, s.Component)
		missing = append(missing, s.Patterns...)
	}
	wantComponents := []string{
		scoring.KeyExperimentation, scoring.KeyExperimentation, scoring.KeyExperimentation,
		scoring.KeySpecificity, scoring.KeySpecificity,
	}
	if diff := cmp.Diff(wantComponents, components); diff != "" {
		t.Errorf("suggestion components mismatch (-want +got):\n%s", diff)
	}
	wantMissing := []string{"missing:uncertainty", "missing:alternatives", "missing:failure", "missing:metrics", "missing:baseline"}
	if diff := cmp.Diff(wantMissing, missing); diff != "" {
		t.Errorf("missing elements mismatch (-want +got):\n%s", diff)
	}
	if suggestions[1].Title != "State the technical uncertainty" {
		t.Errorf("unexpected title %q", suggestions[1].Title)
	}
	for _, s := range suggestions {
		if s.Title == "" || s.Description == "" {
			t.Errorf("incomplete suggestion %+v", s)
		}
	}
}

func TestCritiqueClean(t *testing.T) {
	if got := scoring.Critique(defaultEngine().Evaluate(qualifyingNarrative)); len(got) != 0 {
		t.Errorf("expected no suggestions, got %+v", got)
	}
	if got := scoring.Critique(nil); got != nil {
		t.Errorf("expected nil for nil result, got %+v", got)
	}
}

func TestCritiqueEmptyNarrative(t *testing.T) {
	for _, text := range []string{"", "   \n\t"} {
		got := scoring.Critique(defaultEngine().Evaluate(text))
		if len(got) != 1 {
			t.Fatalf("Critique(%q): expected 1 suggestion, got %d: %+v", text, len(got), got)
		}
		if got[0].Title != "Write a narrative" {
			t.Errorf("Critique(%q): title = %q", text, got[0].Title)
		}
		if diff := cmp.Diff([]string{scoring.EmptyNarrativePattern}, got[0].Patterns); diff != "" {
			t.Errorf("patterns mismatch (-want +got):\n%s", diff)
		}
	}
}
