package arena

import "fmt"

// State is a position in the arena state machine.
//
//	INIT -> GENERATE -> EVALUATE -> GENERATE ... -> CONVERGED | EXHAUSTED | FAILED
type State int

const (
	StateInit State = iota
	StateGenerate
	StateEvaluate
	StateConverged
	StateExhausted
	StateFailed
)

var stateNames = [...]string{"INIT", "GENERATE", "EVALUATE", "CONVERGED", "EXHAUSTED", "FAILED"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether the loop stops in this state.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateExhausted || s == StateFailed
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown arena state %q", b)
}

// event drives a transition.
type event int

const (
	evStart event = iota
	evGenerated
	evNextRound
	evTargetReached
	evBudgetSpent
	evFailed
)

var eventNames = [...]string{"start", "generated", "next_round", "target_reached", "budget_spent", "failed"}

func (e event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", int(e))
	}
	return eventNames[e]
}

type edge struct {
	from State
	on   event
}

var transitions = map[edge]State{
	{StateInit, evStart}:             StateGenerate,
	{StateInit, evFailed}:            StateFailed,
	{StateGenerate, evGenerated}:     StateEvaluate,
	{StateGenerate, evFailed}:        StateFailed,
	{StateEvaluate, evNextRound}:     StateGenerate,
	{StateEvaluate, evTargetReached}: StateConverged,
	{StateEvaluate, evBudgetSpent}:   StateExhausted,
	{StateEvaluate, evFailed}:        StateFailed,
}

// transition returns the state reached from s on e.
func transition(s State, e event) (State, error) {
	next, ok := transitions[edge{s, e}]
	if !ok {
		return s, fmt.Errorf("invalid transition: %s on %s", s, e)
	}
	return next, nil
}
