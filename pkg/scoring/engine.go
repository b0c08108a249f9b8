package scoring

// Detector is the interface that all narrative detectors implement.
type Detector interface {
	// Key returns the machine-readable component key.
	Key() string
	// Name returns the human-readable component name.
	Name() string
	// MaxPenalty returns the cap on this detector's penalty, which is also
	// its weight in the risk score.
	MaxPenalty() int
	// Analyze scores a narrative. It must not fail on empty input.
	Analyze(text string) ComponentResult
}

// Engine runs all configured detectors against a narrative and produces an
// EvaluationResult. Engines hold no mutable state and are safe for
// concurrent use.
type Engine struct {
	detectors []Detector
}

// NewEngine creates a scoring engine with the given detectors.
func NewEngine(detectors ...Detector) *Engine {
	return &Engine{detectors: detectors}
}

// Detectors returns the engine's detectors in evaluation order.
func (e *Engine) Detectors() []Detector {
	out := make([]Detector, len(e.detectors))
	copy(out, e.detectors)
	return out
}

// Caps returns each detector's max penalty keyed by component key.
func (e *Engine) Caps() map[string]int {
	caps := make(map[string]int, len(e.detectors))
	for _, d := range e.detectors {
		caps[d.Key()] = d.MaxPenalty()
	}
	return caps
}

// Analyze runs every detector and returns the raw per-component results.
func (e *Engine) Analyze(text string) []ComponentResult {
	results := make([]ComponentResult, 0, len(e.detectors))
	for _, d := range e.detectors {
		results = append(results, d.Analyze(text))
	}
	return results
}

// Evaluate scores a narrative. Empty and whitespace-only narratives are
// valid input and score at the maximum for every detector.
func (e *Engine) Evaluate(text string) *EvaluationResult {
	return Aggregate(e.Analyze(text))
}

// EvaluateAgainst scores a narrative and records the change in risk relative
// to a previously computed risk score.
func (e *Engine) EvaluateAgainst(text string, previousRiskScore int) *EvaluationResult {
	result := e.Evaluate(text)
	delta := result.RiskScore - previousRiskScore
	result.ScoreDelta = &delta
	return result
}

// Aggregate combines detector results into an EvaluationResult.
func Aggregate(results []ComponentResult) *EvaluationResult {
	scores := make(ComponentScores, len(results))
	for _, r := range results {
		scores[r.Key] = Scored(r.Penalty)
	}

	risk, class := CalculateRisk(scores)
	return &EvaluationResult{
		RiskScore:       risk,
		Classification:  class,
		RiskCategory:    RiskCategoryFromScore(risk),
		ComponentScores: scores,
		Redline:         buildRedline(results),
		NotEvaluated:    scores.Unevaluated(),
	}
}

// CalculateRisk sums the component penalties over the fixed key set and
// classifies the total. Detector caps already weight each component, so no
// further weighting is applied. Components that were not evaluated count 0.
func CalculateRisk(scores ComponentScores) (int, Classification) {
	total := 0
	for _, key := range ComponentKeys {
		total += scores.Int(key)
	}
	total = clamp(total, 0, 100)
	return total, ClassificationFromScore(total)
}

// buildRedline keeps only components with evidence or an unmet flag.
func buildRedline(results []ComponentResult) map[string]RedlineEntry {
	redline := make(map[string]RedlineEntry)
	for _, r := range results {
		if r.Clean() {
			continue
		}
		evidence := make([]Detection, len(r.Detections))
		copy(evidence, r.Detections)

		var flags map[string]bool
		if len(r.Flags) > 0 {
			flags = make(map[string]bool, len(r.Flags))
			for k, v := range r.Flags {
				flags[k] = v
			}
		}

		redline[r.Key] = RedlineEntry{
			Evidence: evidence,
			Count:    len(evidence),
			Flags:    flags,
		}
	}
	return redline
}

// Normalize projects an evaluation onto 0.0-1.0 scores where 1.0 is best.
// caps gives each component's max penalty; see RuleSet.Caps.
func Normalize(result *EvaluationResult, caps map[string]int) ScoreResult {
	sub := func(key string) float64 {
		c := caps[key]
		if c <= 0 {
			return 1
		}
		return 1 - float64(result.ComponentScores.Int(key))/float64(c)
	}
	return ScoreResult{
		OverallScore:       float64(100-result.RiskScore) / 100,
		RoutineEngineering: sub(KeyRoutineEngineering),
		Vagueness:          sub(KeyVagueness),
		BusinessRisk:       sub(KeyBusinessRisk),
		Experimentation:    sub(KeyExperimentation),
		Specificity:        sub(KeySpecificity),
	}
}
