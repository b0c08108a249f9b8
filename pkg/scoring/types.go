// Package scoring implements the redline narrative risk scorer.
// It runs independent pattern detectors over an R&D narrative and aggregates
// their bounded penalties into an explainable, evidence-backed risk score.
package scoring

import (
	"maps"
	"slices"
)

// Component keys. The set is fixed; every detector reports under one of these.
const (
	KeyRoutineEngineering = "routine_engineering"
	KeyVagueness          = "vagueness"
	KeyBusinessRisk       = "business_risk"
	KeyExperimentation    = "experimentation"
	KeySpecificity        = "specificity"
)

// ComponentKeys lists the component keys in aggregation order.
var ComponentKeys = []string{
	KeyRoutineEngineering,
	KeyVagueness,
	KeyBusinessRisk,
	KeyExperimentation,
	KeySpecificity,
}

// QualifyingThreshold is the exclusive upper bound on risk for a QUALIFYING narrative.
const QualifyingThreshold = 20

// Classification is the binary outcome of an evaluation.
type Classification string

const (
	Qualifying    Classification = "QUALIFYING"
	NonQualifying Classification = "NON_QUALIFYING"
)

// RiskCategory is the five-level refinement of Classification.
type RiskCategory string

const (
	RiskCritical RiskCategory = "CRITICAL"
	RiskVeryHigh RiskCategory = "VERY_HIGH"
	RiskHigh     RiskCategory = "HIGH"
	RiskMedium   RiskCategory = "MEDIUM"
	RiskLow      RiskCategory = "LOW"
)

// Detection is one piece of evidence found by a detector.
type Detection struct {
	Pattern   string `json:"pattern"`
	Rationale string `json:"rationale"`
}

// ComponentResult is the output of a single detector.
// Invariant: 0 <= Penalty <= MaxPenalty.
type ComponentResult struct {
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	Penalty    int             `json:"penalty"`
	MaxPenalty int             `json:"max_penalty"`
	Detections []Detection     `json:"detections"`
	Flags      map[string]bool `json:"flags,omitempty"` // e.g. "uncertainty_found"
}

// Clean reports whether the result carries nothing worth redlining.
func (r ComponentResult) Clean() bool {
	if len(r.Detections) > 0 {
		return false
	}
	for _, ok := range r.Flags {
		if !ok {
			return false
		}
	}
	return true
}

// RedlineEntry is the evidence for one component in the redline.
type RedlineEntry struct {
	Evidence []Detection     `json:"evidence"`
	Count    int             `json:"count"`
	Flags    map[string]bool `json:"flags,omitempty"`
}

// EvaluationResult is the complete output of scoring a narrative.
// Immutable once computed.
type EvaluationResult struct {
	RiskScore       int                     `json:"risk_score"`
	Classification  Classification          `json:"classification"`
	RiskCategory    RiskCategory            `json:"risk_category"`
	ComponentScores ComponentScores         `json:"component_scores"`
	Redline         map[string]RedlineEntry `json:"redline"`
	NotEvaluated    []string                `json:"not_evaluated,omitempty"`
	ScoreDelta      *int                    `json:"score_delta,omitempty"` // risk_score minus a previous risk score
}

// Clone returns a deep copy of r.
func (r *EvaluationResult) Clone() *EvaluationResult {
	if r == nil {
		return nil
	}
	out := *r
	out.ComponentScores = maps.Clone(r.ComponentScores)
	out.NotEvaluated = slices.Clone(r.NotEvaluated)
	if r.ScoreDelta != nil {
		d := *r.ScoreDelta
		out.ScoreDelta = &d
	}
	if r.Redline != nil {
		out.Redline = make(map[string]RedlineEntry, len(r.Redline))
		for k, e := range r.Redline {
			e.Evidence = slices.Clone(e.Evidence)
			e.Flags = maps.Clone(e.Flags)
			out.Redline[k] = e
		}
	}
	return &out
}

// ScoreResult is the normalized 0.0-1.0 projection of an EvaluationResult
// consumed by external benchmarks. Higher is better.
type ScoreResult struct {
	OverallScore       float64 `json:"overall_score"`
	RoutineEngineering float64 `json:"routine_engineering"`
	Vagueness          float64 `json:"vagueness"`
	BusinessRisk       float64 `json:"business_risk"`
	Experimentation    float64 `json:"experimentation"`
	Specificity        float64 `json:"specificity"`
}

// ClassificationFromScore applies the fixed qualifying threshold.
func ClassificationFromScore(score int) Classification {
	if score < QualifyingThreshold {
		return Qualifying
	}
	return NonQualifying
}

// RiskCategoryFromScore maps a risk score to a risk category.
func RiskCategoryFromScore(score int) RiskCategory {
	switch {
	case score >= 80:
		return RiskCritical
	case score >= 60:
		return RiskVeryHigh
	case score >= 40:
		return RiskHigh
	case score >= QualifyingThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}
