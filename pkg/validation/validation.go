// Package validation certifies the scorer against a labelled corpus:
// agreement with human labels (Cohen's kappa), accuracy, determinism and a
// confidence interval over the risk scores.
package validation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/redline-eval/redline/pkg/scoring"
	"github.com/redline-eval/redline/pkg/stats"
)

// DefaultConcurrency bounds parallel evaluations when Options leaves it unset.
const DefaultConcurrency = 4

// Evaluator scores a narrative. arena.EngineEvaluator and arena.HTTPEvaluator
// both satisfy it.
type Evaluator interface {
	Evaluate(ctx context.Context, narrative string) (*scoring.EvaluationResult, error)
}

// Options tunes a validation run.
type Options struct {
	Concurrency int
	Level       float64 // confidence level for the risk interval, 0.95 or 0.99
	Logger      *zap.Logger
}

// ItemResult is the outcome for one corpus item.
type ItemResult struct {
	ID            string                 `json:"id"`
	Expected      scoring.Classification `json:"expected"`
	Reviewer      scoring.Classification `json:"reviewer,omitempty"`
	Predicted     scoring.Classification `json:"predicted"`
	RiskScore     int                    `json:"risk_score"`
	Match         bool                   `json:"match"`
	Deterministic bool                   `json:"deterministic"`
}

// Report summarizes a validation run.
type Report struct {
	Corpus   string       `json:"corpus"`
	Items    []ItemResult `json:"items"`
	N        int          `json:"n"`
	Accuracy float64      `json:"accuracy"`
	// Kappa is agreement between the scorer and the expected labels.
	Kappa float64 `json:"kappa"`
	// ReviewerKappa is agreement between expected and reviewer labels over
	// the items that carry both.
	ReviewerKappa    *float64        `json:"reviewer_kappa,omitempty"`
	ReviewerN        int             `json:"reviewer_n,omitempty"`
	RiskInterval     *stats.Interval `json:"risk_interval,omitempty"`
	Nondeterministic []string        `json:"nondeterministic,omitempty"`
}

// Deterministic reports whether every item scored identically twice.
func (r *Report) Deterministic() bool { return len(r.Nondeterministic) == 0 }

// Run evaluates every item twice, concurrently across items, and computes
// the report. Any evaluator error aborts the run.
func Run(ctx context.Context, eval Evaluator, corpus *Corpus, opts Options) (*Report, error) {
	if err := corpus.Validate(); err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Level == 0 {
		opts.Level = 0.95
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]ItemResult, len(corpus.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, item := range corpus.Items {
		g.Go(func() error {
			first, err := eval.Evaluate(gctx, item.Narrative)
			if err != nil {
				return fmt.Errorf("item %s: %w", item.ID, err)
			}
			second, err := eval.Evaluate(gctx, item.Narrative)
			if err != nil {
				return fmt.Errorf("item %s: %w", item.ID, err)
			}
			stable := first.RiskScore == second.RiskScore && first.Classification == second.Classification
			results[i] = ItemResult{
				ID:            item.ID,
				Expected:      item.Expected,
				Reviewer:      item.Reviewer,
				Predicted:     first.Classification,
				RiskScore:     first.RiskScore,
				Match:         first.Classification == item.Expected,
				Deterministic: stable,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report, err := summarize(corpus.Name, results, opts.Level)
	if err != nil {
		return nil, err
	}
	logger.Info("validation complete",
		zap.String("corpus", corpus.Name),
		zap.Int("n", report.N),
		zap.Float64("accuracy", report.Accuracy),
		zap.Float64("kappa", report.Kappa),
		zap.Int("nondeterministic", len(report.Nondeterministic)))
	return report, nil
}

func summarize(name string, results []ItemResult, level float64) (*Report, error) {
	r := &Report{Corpus: name, Items: results, N: len(results)}

	expected := make([]int, len(results))
	predicted := make([]int, len(results))
	risks := make([]float64, len(results))
	var matches int
	var reviewA, reviewB []int
	for i, it := range results {
		expected[i] = label(it.Expected)
		predicted[i] = label(it.Predicted)
		risks[i] = float64(it.RiskScore)
		if it.Match {
			matches++
		}
		if !it.Deterministic {
			r.Nondeterministic = append(r.Nondeterministic, it.ID)
		}
		if it.Reviewer != "" {
			reviewA = append(reviewA, label(it.Expected))
			reviewB = append(reviewB, label(it.Reviewer))
		}
	}
	r.Accuracy = float64(matches) / float64(len(results))

	kappa, err := stats.CohensKappa(expected, predicted)
	if err != nil {
		return nil, fmt.Errorf("scorer agreement: %w", err)
	}
	r.Kappa = kappa

	if len(reviewA) > 0 {
		rk, err := stats.CohensKappa(reviewA, reviewB)
		if err != nil {
			return nil, fmt.Errorf("reviewer agreement: %w", err)
		}
		r.ReviewerKappa = &rk
		r.ReviewerN = len(reviewA)
	}

	// A single item has no spread to bound.
	if len(risks) >= 2 {
		iv, err := stats.ConfidenceInterval(risks, level)
		if err != nil {
			return nil, fmt.Errorf("risk interval: %w", err)
		}
		r.RiskInterval = &iv
	}
	return r, nil
}

// label maps a classification onto the binary rating used for kappa:
// 1 for QUALIFYING.
func label(c scoring.Classification) int {
	if c == scoring.Qualifying {
		return 1
	}
	return 0
}
