package scoring_test

import (
	"testing"

	"github.com/redline-eval/redline/pkg/scoring"
)

func routineDetector(t *testing.T) *scoring.KeywordDetector {
	t.Helper()
	d, err := scoring.NewKeywordDetector(scoring.KeyRoutineEngineering, scoring.NameRoutineEngineering,
		scoring.DefaultRules().RoutineEngineering)
	if err != nil {
		t.Fatalf("NewKeywordDetector: %v", err)
	}
	return d
}

func TestKeywordDetector_Matches(t *testing.T) {
	d := routineDetector(t)

	result := d.Analyze("The team performed ROUTINE Maintenance.")
	if result.Key != scoring.KeyRoutineEngineering {
		t.Errorf("expected key routine_engineering, got %s", result.Key)
	}
	if result.Penalty != 10 {
		t.Errorf("expected penalty 10, got %d", result.Penalty)
	}
	if len(result.Detections) != 2 {
		t.Fatalf("expected 2 detections, got %+v", result.Detections)
	}
	if result.Detections[0].Pattern != "routine" || result.Detections[1].Pattern != "maintenance" {
		t.Errorf("expected detections in table order, got %+v", result.Detections)
	}
	for _, det := range result.Detections {
		if det.Rationale == "" {
			t.Errorf("detection %q has no rationale", det.Pattern)
		}
	}
}

func TestKeywordDetector_Cap(t *testing.T) {
	d := routineDetector(t)

	// 8 matches at 5 points each, capped at 30.
	result := d.Analyze("routine maintenance bug fix debugging upgrade configuration installation migration")
	if result.Penalty != 30 {
		t.Errorf("expected penalty capped at 30, got %d", result.Penalty)
	}
	if len(result.Detections) != 8 {
		t.Errorf("expected every match reported as evidence, got %d", len(result.Detections))
	}
}

func TestKeywordDetector_RegexWordBoundary(t *testing.T) {
	d := routineDetector(t)

	if result := d.Analyze("We built a reporting pipeline with sporting data."); result.Penalty != 0 {
		t.Errorf("expected no match inside words, got %+v", result.Detections)
	}
	if result := d.Analyze("We ported the codec to RISC-V."); result.Penalty != 5 {
		t.Errorf("expected porting match, got %d", result.Penalty)
	}
}

func TestKeywordDetector_Clean(t *testing.T) {
	d := routineDetector(t)

	result := d.Analyze("We were uncertain whether the alloy would survive 900 C.")
	if result.Penalty != 0 || len(result.Detections) != 0 {
		t.Errorf("expected clean result, got %+v", result)
	}
	if !result.Clean() {
		t.Error("expected Clean() true")
	}
}

func TestKeywordDetector_Empty(t *testing.T) {
	d := routineDetector(t)

	result := d.Analyze("  \n")
	if result.Penalty != d.MaxPenalty() {
		t.Errorf("expected max penalty for empty text, got %d", result.Penalty)
	}
	if len(result.Detections) != 1 || result.Detections[0].Pattern != scoring.EmptyNarrativePattern {
		t.Errorf("expected single empty_narrative detection, got %+v", result.Detections)
	}
}

func TestKeywordDetector_Vagueness(t *testing.T) {
	d, err := scoring.NewKeywordDetector(scoring.KeyVagueness, scoring.NameVagueness, scoring.DefaultRules().Vagueness)
	if err != nil {
		t.Fatal(err)
	}

	result := d.Analyze("Our innovative, state-of-the-art platform delivers significant gains.")
	if result.Penalty != 15 {
		t.Errorf("expected penalty 15, got %d (%+v)", result.Penalty, result.Detections)
	}
}

func TestKeywordDetector_BusinessRiskWeights(t *testing.T) {
	d, err := scoring.NewKeywordDetector(scoring.KeyBusinessRisk, scoring.NameBusinessRisk, scoring.DefaultRules().BusinessRisk)
	if err != nil {
		t.Fatal(err)
	}

	result := d.Analyze("We expect revenue growth and market share gains.")
	if result.Penalty != 8 {
		t.Errorf("expected 5 (market share) + 3 (revenue) = 8, got %d", result.Penalty)
	}
	if len(result.Detections) != 2 || result.Detections[0].Pattern != "market share" {
		t.Errorf("unexpected detections %+v", result.Detections)
	}
}

func TestNewKeywordDetector_BadRegex(t *testing.T) {
	_, err := scoring.NewKeywordDetector("x", "X", scoring.KeywordTable{
		MaxPenalty: 10,
		Rules:      []scoring.Rule{{Pattern: "(unclosed", Regex: true, Weight: 5}},
	})
	if err == nil {
		t.Error("expected error for invalid regex")
	}
}
