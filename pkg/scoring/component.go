package scoring

import (
	"encoding/json"
	"fmt"
)

// ComponentScore is a component's penalty, or the marker that the component
// was never evaluated. The zero value is NotEvaluated.
type ComponentScore struct {
	penalty   int
	evaluated bool
}

// Scored returns an evaluated component score.
func Scored(penalty int) ComponentScore {
	return ComponentScore{penalty: penalty, evaluated: true}
}

// NotEvaluated returns the score of a component no detector produced.
func NotEvaluated() ComponentScore {
	return ComponentScore{}
}

// Penalty returns the penalty and whether the component was evaluated.
// A component that was not evaluated contributes 0.
func (s ComponentScore) Penalty() (int, bool) {
	return s.penalty, s.evaluated
}

func (s ComponentScore) String() string {
	if !s.evaluated {
		return "not evaluated"
	}
	return fmt.Sprintf("%d", s.penalty)
}

// ComponentScores maps component keys to their scores.
// On the wire it is a map of component key to integer penalty.
type ComponentScores map[string]ComponentScore

// Get returns the score for key; absent keys are NotEvaluated.
func (c ComponentScores) Get(key string) ComponentScore {
	return c[key]
}

// Int returns the penalty for key, 0 when not evaluated.
func (c ComponentScores) Int(key string) int {
	p, _ := c[key].Penalty()
	return p
}

// Unevaluated lists the fixed component keys that carry no evaluated score.
func (c ComponentScores) Unevaluated() []string {
	var keys []string
	for _, k := range ComponentKeys {
		if _, ok := c[k].Penalty(); !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c ComponentScores) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(ComponentKeys))
	for _, k := range ComponentKeys {
		out[k] = c.Int(k)
	}
	for k := range c {
		if _, ok := out[k]; !ok {
			out[k] = c.Int(k)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON treats every key present on the wire as evaluated.
func (c *ComponentScores) UnmarshalJSON(data []byte) error {
	var in map[string]int
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(ComponentScores, len(in))
	for k, v := range in {
		out[k] = Scored(v)
	}
	*c = out
	return nil
}
