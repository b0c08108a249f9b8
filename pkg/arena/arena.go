// Package arena runs the multi-turn refinement loop: a generator writes a
// narrative, an evaluator scores it, and the redline of each round is fed
// back to the generator as critique until the target risk is reached or the
// iteration budget runs out.
package arena

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/redline-eval/redline/pkg/scoring"
)

// Sentinel errors wrapped into ArenaResult.Err.
var (
	ErrGenerator       = errors.New("generator failed")
	ErrEvaluator       = errors.New("evaluator failed")
	ErrInvalidScenario = errors.New("invalid scenario")
)

// DefaultRetries is the number of extra attempts per phase.
const DefaultRetries = 2

// Request is what a generator receives each round. Previous is a copy;
// changing it does not affect the run's records.
type Request struct {
	Round      int                  `json:"round"`
	Difficulty string               `json:"difficulty"`
	Topic      string               `json:"topic,omitempty"`
	Previous   *IterationRecord     `json:"previous,omitempty"`
	Critique   []scoring.Suggestion `json:"critique,omitempty"`
}

// Generator produces a narrative for a round.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Evaluator scores a narrative.
type Evaluator interface {
	Evaluate(ctx context.Context, narrative string) (*scoring.EvaluationResult, error)
}

// IterationRecord is one completed round. Records are never modified after
// they are appended.
type IterationRecord struct {
	Round      int                       `json:"round"`
	Narrative  string                    `json:"narrative"`
	Evaluation *scoring.EvaluationResult `json:"evaluation"`
	ScoreDelta *int                      `json:"score_delta,omitempty"` // change from the previous round
}

// ArenaResult is the outcome of a run. On FAILED, Records holds every round
// completed before the failure.
type ArenaResult struct {
	ID       string            `json:"id"`
	Scenario Scenario          `json:"scenario"`
	State    State             `json:"state"`
	Records  []IterationRecord `json:"records"`

	// BestRound is the round of Best(), set once the run ends with records.
	BestRound int    `json:"best_round,omitempty"`
	Err       error  `json:"-"`
	Error     string `json:"error,omitempty"`
}

// Best returns the lowest-risk record, the earliest on ties.
func (r *ArenaResult) Best() (IterationRecord, bool) {
	if len(r.Records) == 0 {
		return IterationRecord{}, false
	}
	best := r.Records[0]
	for _, rec := range r.Records[1:] {
		if rec.Evaluation.RiskScore < best.Evaluation.RiskScore {
			best = rec
		}
	}
	return best, true
}

// Arena wires a generator to an evaluator.
type Arena struct {
	gen     Generator
	eval    Evaluator
	retries int
	backoff time.Duration
	logger  *zap.Logger
}

// Option configures an Arena.
type Option func(*Arena)

// WithRetries sets the number of extra attempts per phase before failing.
func WithRetries(n int) Option {
	return func(a *Arena) {
		if n >= 0 {
			a.retries = n
		}
	}
}

// WithBackoff sets the base delay between attempts; attempt k waits k*d.
func WithBackoff(d time.Duration) Option {
	return func(a *Arena) { a.backoff = d }
}

// WithLogger sets the run logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Arena) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Arena.
func New(gen Generator, eval Evaluator, opts ...Option) *Arena {
	a := &Arena{
		gen:     gen,
		eval:    eval,
		retries: DefaultRetries,
		backoff: 500 * time.Millisecond,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run drives the state machine to a terminal state. Rounds are sequential:
// each depends on the previous round's redline.
func (a *Arena) Run(ctx context.Context, sc Scenario) *ArenaResult {
	res := &ArenaResult{ID: uuid.NewString(), Scenario: sc, State: StateInit}
	log := a.logger.With(zap.String("run_id", res.ID), zap.String("scenario", sc.Name))

	var (
		narrative string
		state     State
	)
	if err := sc.Validate(); err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		state = a.step(log, StateInit, evFailed)
	} else {
		state = a.step(log, StateInit, evStart)
	}
	for !state.Terminal() {
		round := len(res.Records) + 1
		switch state {
		case StateGenerate:
			req := a.request(sc, res.Records, round)
			text, err := withRetry(ctx, a.retries, a.backoff, func(ctx context.Context) (string, error) {
				return a.gen.Generate(ctx, req)
			})
			if err != nil {
				res.Err = fmt.Errorf("%w: round %d: %w", ErrGenerator, round, err)
				state = a.step(log, state, evFailed)
				continue
			}
			narrative = text
			state = a.step(log, state, evGenerated)

		case StateEvaluate:
			eval, err := withRetry(ctx, a.retries, a.backoff, func(ctx context.Context) (*scoring.EvaluationResult, error) {
				return a.eval.Evaluate(ctx, narrative)
			})
			if err != nil {
				res.Err = fmt.Errorf("%w: round %d: %w", ErrEvaluator, round, err)
				state = a.step(log, state, evFailed)
				continue
			}

			rec := IterationRecord{Round: round, Narrative: narrative, Evaluation: eval}
			if n := len(res.Records); n > 0 {
				delta := eval.RiskScore - res.Records[n-1].Evaluation.RiskScore
				rec.ScoreDelta = &delta
			}
			res.Records = append(res.Records, rec)
			arenaRounds.Inc()
			log.Info("arena round evaluated",
				zap.Int("round", round),
				zap.Int("risk_score", eval.RiskScore),
				zap.String("classification", string(eval.Classification)))

			switch {
			case eval.RiskScore <= sc.TargetRiskScore:
				state = a.step(log, state, evTargetReached)
			case round >= sc.MaxIterations:
				state = a.step(log, state, evBudgetSpent)
			default:
				state = a.step(log, state, evNextRound)
			}
		}
	}

	res.State = state
	if best, ok := res.Best(); ok {
		res.BestRound = best.Round
	}
	if res.Err != nil {
		res.Error = res.Err.Error()
		log.Warn("arena run failed", zap.Int("completed_rounds", len(res.Records)), zap.Error(res.Err))
	}
	arenaRuns.WithLabelValues(res.State.String()).Inc()
	return res
}

// step applies a transition. The loop only fires events valid for its
// current state, so an error here is a programming defect.
func (a *Arena) step(log *zap.Logger, s State, e event) State {
	next, err := transition(s, e)
	if err != nil {
		panic(err)
	}
	log.Debug("arena transition", zap.Stringer("from", s), zap.Stringer("event", e), zap.Stringer("to", next))
	return next
}

func (a *Arena) request(sc Scenario, records []IterationRecord, round int) Request {
	req := Request{Round: round, Difficulty: sc.Difficulty, Topic: sc.Topic}
	if n := len(records); n > 0 {
		prev := records[n-1]
		prev.Evaluation = prev.Evaluation.Clone()
		if prev.ScoreDelta != nil {
			d := *prev.ScoreDelta
			prev.ScoreDelta = &d
		}
		req.Previous = &prev
		req.Critique = scoring.Critique(prev.Evaluation)
	}
	return req
}

// withRetry calls fn up to retries+1 times. It stops early once ctx is done.
func withRetry[T any](ctx context.Context, retries int, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 && backoff > 0 {
			select {
			case <-time.After(time.Duration(attempt) * backoff):
			case <-ctx.Done():
				return out, errors.Join(err, ctx.Err())
			}
		}
		out, err = fn(ctx)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return out, err
		}
	}
	return out, fmt.Errorf("after %d attempts: %w", retries+1, err)
}
