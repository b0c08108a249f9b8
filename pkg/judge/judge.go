// Package judge blends the deterministic rule score with a probabilistic
// (LLM) judgment. The rule score is always available: any problem with the
// probabilistic call falls back to it silently.
package judge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/redline-eval/redline/pkg/scoring"
)

// Fallback reasons.
const (
	ReasonNoCredential = "no_credential"
	ReasonTimeout      = "timeout"
	ReasonCanceled     = "canceled"
	ReasonError        = "error"
	ReasonInvalidScore = "invalid_score"
)

// Scorer is an external probabilistic scorer returning a score in [0,1],
// where 1 means the narrative certainly qualifies.
type Scorer interface {
	Score(ctx context.Context, narrative string) (float64, error)
}

// Config holds the blend weights. RuleWeight + JudgeWeight must equal 1.
type Config struct {
	RuleWeight  float64       `yaml:"rule_weight" json:"rule_weight"`
	JudgeWeight float64       `yaml:"judge_weight" json:"judge_weight"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns the default 0.7/0.3 blend with a 30s timeout.
func DefaultConfig() Config {
	return Config{RuleWeight: 0.7, JudgeWeight: 0.3, Timeout: 30 * time.Second}
}

// Validate checks the weights and timeout.
func (c Config) Validate() error {
	if c.RuleWeight < 0 || c.JudgeWeight < 0 {
		return fmt.Errorf("weights must be non-negative (rule %.3f, judge %.3f)", c.RuleWeight, c.JudgeWeight)
	}
	if math.Abs(c.RuleWeight+c.JudgeWeight-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %.3f", c.RuleWeight+c.JudgeWeight)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Outcome is the result of a hybrid scoring call: either Scored or Fallback.
type Outcome interface {
	RuleScore() float64
	FinalScore() float64
	outcome()
}

// Scored is the outcome when the probabilistic scorer answered.
type Scored struct {
	Rule  float64
	LLM   float64
	Final float64
}

func (s Scored) RuleScore() float64  { return s.Rule }
func (s Scored) FinalScore() float64 { return s.Final }
func (Scored) outcome()              {}

// Fallback is the outcome when only the rule score is available.
// The final score is the rule score.
type Fallback struct {
	Rule   float64
	Reason string
	Err    error
}

func (f Fallback) RuleScore() float64  { return f.Rule }
func (f Fallback) FinalScore() float64 { return f.Rule }
func (Fallback) outcome()              {}

// HybridScoreResult is the wire form of an Outcome.
type HybridScoreResult struct {
	RuleScore      float64  `json:"rule_score"`
	LLMScore       *float64 `json:"llm_score"`
	FinalScore     float64  `json:"final_score"`
	FallbackUsed   bool     `json:"fallback_used"`
	FallbackReason string   `json:"fallback_reason,omitempty"`
}

// Result projects an Outcome onto its wire form.
func Result(o Outcome) HybridScoreResult {
	switch v := o.(type) {
	case Scored:
		llm := v.LLM
		return HybridScoreResult{RuleScore: v.Rule, LLMScore: &llm, FinalScore: v.Final}
	case Fallback:
		return HybridScoreResult{RuleScore: v.Rule, FinalScore: v.Rule, FallbackUsed: true, FallbackReason: v.Reason}
	default:
		panic(fmt.Sprintf("judge: unknown outcome %T", o))
	}
}

// Judge combines a rule score with a Scorer's judgment.
type Judge struct {
	scorer Scorer
	cfg    Config
	logger *zap.Logger
}

// Option configures a Judge.
type Option func(*Judge)

// WithLogger sets the logger used to report fallbacks. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(j *Judge) {
		if l != nil {
			j.logger = l
		}
	}
}

// New creates a Judge. A nil scorer means no credential is configured and
// every call falls back to the rule score.
func New(scorer Scorer, cfg Config, opts ...Option) (*Judge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("judge config: %w", err)
	}
	j := &Judge{scorer: scorer, cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Config returns the judge's configuration.
func (j *Judge) Config() Config { return j.cfg }

// Score blends ruleScore with the scorer's judgment of narrative. It never
// fails: any error, timeout or out-of-range answer yields a Fallback.
func (j *Judge) Score(ctx context.Context, narrative string, ruleScore float64) Outcome {
	start := time.Now()
	outcome := j.score(ctx, narrative, ruleScore)
	observe(outcome, time.Since(start))

	if fb, ok := outcome.(Fallback); ok && fb.Reason != ReasonNoCredential {
		j.logger.Warn("probabilistic judge unavailable, using rule score",
			zap.String("reason", fb.Reason),
			zap.Float64("rule_score", ruleScore),
			zap.Error(fb.Err))
	}
	return outcome
}

func (j *Judge) score(ctx context.Context, narrative string, ruleScore float64) Outcome {
	if j.scorer == nil {
		return Fallback{Rule: ruleScore, Reason: ReasonNoCredential}
	}

	ctx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	type reply struct {
		score float64
		err   error
	}
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("scorer panic: %v", r)}
			}
		}()
		s, err := j.scorer.Score(ctx, narrative)
		ch <- reply{score: s, err: err}
	}()

	var r reply
	select {
	case r = <-ch:
	case <-ctx.Done():
		return Fallback{Rule: ruleScore, Reason: contextReason(ctx.Err()), Err: ctx.Err()}
	}

	if r.err != nil {
		reason := ReasonError
		if errors.Is(r.err, context.DeadlineExceeded) || errors.Is(r.err, context.Canceled) {
			reason = contextReason(r.err)
		}
		return Fallback{Rule: ruleScore, Reason: reason, Err: r.err}
	}
	if math.IsNaN(r.score) || r.score < 0 || r.score > 1 {
		return Fallback{
			Rule:   ruleScore,
			Reason: ReasonInvalidScore,
			Err:    fmt.Errorf("score %v outside [0,1]", r.score),
		}
	}

	return Scored{
		Rule:  ruleScore,
		LLM:   r.score,
		Final: j.cfg.RuleWeight*ruleScore + j.cfg.JudgeWeight*r.score,
	}
}

func contextReason(err error) string {
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}
	return ReasonTimeout
}

// Evaluate scores a narrative with the engine and blends its normalized
// overall score with the scorer's judgment.
func (j *Judge) Evaluate(ctx context.Context, engine *scoring.Engine, narrative string) (*scoring.EvaluationResult, Outcome) {
	result := engine.Evaluate(narrative)
	rule := scoring.Normalize(result, engine.Caps()).OverallScore
	return result, j.Score(ctx, narrative, rule)
}
